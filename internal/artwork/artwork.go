// Package artwork resolves Met collection objects into normalised Artwork
// records, caching both hits and explicit absences.
package artwork

import (
	"arttimeline/internal/platform/metmuseum"
)

const (
	DefaultTitle  = "Untitled"
	DefaultArtist = "Unknown Artist"
	DefaultYear   = "Date Unknown"
	DefaultMedium = "Medium Unknown"
)

// Artwork is the shape served to clients and stored in the caches.
type Artwork struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	Artist           string   `json:"artist"`
	ArtistBio        string   `json:"artistBio,omitempty"`
	Year             string   `json:"year"`
	BeginYear        *int     `json:"objectBeginDate"`
	EndYear          *int     `json:"objectEndDate"`
	Image            string   `json:"image"`
	AdditionalImages []string `json:"additionalImages,omitempty"`
	Culture          string   `json:"culture,omitempty"`
	Period           string   `json:"period,omitempty"`
	Location         string   `json:"location,omitempty"`
	Medium           string   `json:"medium"`
	Dimensions       string   `json:"dimensions,omitempty"`
	Department       string   `json:"department,omitempty"`
	Classification   string   `json:"classification,omitempty"`
	Description      string   `json:"description,omitempty"`
	ObjectURL        string   `json:"objectURL,omitempty"`
	IsPublicDomain   bool     `json:"isPublicDomain"`
	MetadataDate     string   `json:"metadataDate,omitempty"`
	Repository       string   `json:"repository,omitempty"`
}

// Overlaps reports whether the artwork's known year range intersects
// [start, end]. Unknown bounds never overlap.
func (a Artwork) Overlaps(start, end int) bool {
	if a.BeginYear == nil || a.EndYear == nil {
		return false
	}
	return *a.BeginYear <= end && *a.EndYear >= start
}

// Normalize maps a remote object to an Artwork. Objects with no image are
// reported as absent.
func Normalize(obj *metmuseum.Object) (Artwork, bool) {
	if obj == nil {
		return Artwork{}, false
	}
	image := obj.PrimaryImage
	if image == "" {
		image = obj.PrimaryImageSmall
	}
	if image == "" {
		return Artwork{}, false
	}

	location := obj.Country
	if location == "" {
		location = obj.City
	}

	return Artwork{
		ID:               obj.ObjectID,
		Title:            orDefault(obj.Title, DefaultTitle),
		Artist:           orDefault(obj.ArtistDisplayName, DefaultArtist),
		ArtistBio:        obj.ArtistDisplayBio,
		Year:             orDefault(obj.ObjectDate, DefaultYear),
		BeginYear:        obj.ObjectBeginDate,
		EndYear:          obj.ObjectEndDate,
		Image:            image,
		AdditionalImages: obj.AdditionalImages,
		Culture:          obj.Culture,
		Period:           obj.Period,
		Location:         location,
		Medium:           orDefault(obj.Medium, DefaultMedium),
		Dimensions:       obj.Dimensions,
		Department:       obj.Department,
		Classification:   obj.Classification,
		Description:      obj.CreditLine,
		ObjectURL:        obj.ObjectURL,
		IsPublicDomain:   obj.IsPublicDomain,
		MetadataDate:     obj.MetadataDate,
		Repository:       obj.Repository,
	}, true
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
