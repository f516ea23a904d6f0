// Package timeline curates small artwork selections for art-history periods.
package timeline

import (
	"errors"
	"time"
)

var ErrUnknownPeriod = errors.New("unknown period")

// Period describes one era on the timeline. OpenEnded periods run to the
// current year.
type Period struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	DateRange string   `json:"dateRange"`
	StartYear int      `json:"startYear"`
	EndYear   int      `json:"endYear"`
	OpenEnded bool     `json:"openEnded,omitempty"`
	Queries   []string `json:"-"`
}

// End returns the last year covered by the period as of now.
func (p Period) End(now time.Time) int {
	if p.OpenEnded {
		return now.UTC().Year()
	}
	return p.EndYear
}

var periods = []Period{
	{
		ID:        "ancient",
		Title:     "Ancient World",
		DateRange: "3000 BCE — 500 CE",
		StartYear: -3000,
		EndYear:   500,
		Queries:   []string{"Egyptian", "Greek", "Ancient"},
	},
	{
		ID:        "medieval",
		Title:     "Medieval Period",
		DateRange: "500 — 1400",
		StartYear: 500,
		EndYear:   1400,
		Queries:   []string{"Medieval", "Byzantine", "illuminated"},
	},
	{
		ID:        "renaissance",
		Title:     "Renaissance",
		DateRange: "1400 — 1600",
		StartYear: 1400,
		EndYear:   1600,
		Queries:   []string{"Renaissance", "Italian", "15th century"},
	},
	{
		ID:        "baroque",
		Title:     "Baroque & Enlightenment",
		DateRange: "1600 — 1800",
		StartYear: 1600,
		EndYear:   1800,
		Queries:   []string{"Baroque", "17th century", "18th century"},
	},
	{
		ID:        "modern",
		Title:     "Modern & Contemporary",
		DateRange: "1800 — Present",
		StartYear: 1800,
		OpenEnded: true,
		Queries:   []string{"Impressionism", "19th century", "Modern"},
	},
}

// Periods returns the catalogue in chronological order. The slice is a copy.
func Periods(now time.Time) []Period {
	out := make([]Period, len(periods))
	for i, p := range periods {
		p.EndYear = p.End(now)
		p.Queries = append([]string(nil), p.Queries...)
		out[i] = p
	}
	return out
}

func FindPeriod(id string) (Period, error) {
	for _, p := range periods {
		if p.ID == id {
			p.Queries = append([]string(nil), p.Queries...)
			return p, nil
		}
	}
	return Period{}, ErrUnknownPeriod
}
