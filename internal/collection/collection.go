// Package collection stores the artworks each user has saved. Entries keep
// the display fields captured at save time and are never refreshed from
// the remote collection.
package collection

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("artwork not in collection")
	ErrAlreadySaved = errors.New("artwork already in collection")
)

type Entry struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	ArtworkID   int       `json:"artwork_id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Year        string    `json:"year"`
	Image       string    `json:"image"`
	Period      string    `json:"period"`
	Medium      string    `json:"medium"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type SaveInput struct {
	ArtworkID   int    `json:"artwork_id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,max=500"`
	Artist      string `json:"artist" validate:"max=500"`
	Year        string `json:"year" validate:"max=255"`
	Image       string `json:"image" validate:"max=2048"`
	Period      string `json:"period" validate:"max=255"`
	Medium      string `json:"medium" validate:"max=1000"`
	Location    string `json:"location" validate:"max=255"`
	Description string `json:"description" validate:"max=5000"`
}

func (in SaveInput) entry(userID string) Entry {
	return Entry{
		UserID:      userID,
		ArtworkID:   in.ArtworkID,
		Title:       in.Title,
		Artist:      in.Artist,
		Year:        in.Year,
		Image:       in.Image,
		Period:      in.Period,
		Medium:      in.Medium,
		Location:    in.Location,
		Description: in.Description,
	}
}
