package timeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"arttimeline/internal/artwork"
	"arttimeline/internal/cache"
)

const PeriodNamespace = "timeline:period"

// CurationRecorder observes result sizes. *metrics.Metrics satisfies it.
type CurationRecorder interface {
	Curated(period string, n int)
}

// Service fronts the Curator with a per-day response cache.
type Service struct {
	curator  *Curator
	bucket   *cache.Bucket
	recorder CurationRecorder
	now      func() time.Time
	log      zerolog.Logger
}

func NewService(curator *Curator, bucket *cache.Bucket, recorder CurationRecorder, log zerolog.Logger) *Service {
	return &Service{
		curator:  curator,
		bucket:   bucket,
		recorder: recorder,
		now:      time.Now,
		log:      log,
	}
}

func (s *Service) Periods() []Period {
	return Periods(s.now())
}

// PeriodArtworks returns the day's curated selection for a period. Empty
// and interrupted results are served but not cached, so a remote outage
// does not pin an empty timeline for a whole day.
func (s *Service) PeriodArtworks(ctx context.Context, periodID string, limit int) ([]artwork.Artwork, error) {
	if _, err := FindPeriod(periodID); err != nil {
		return nil, err
	}

	now := s.now()
	key := periodCacheKey(periodID, limit, now)

	var cached []artwork.Artwork
	ok, err := s.bucket.GetJSON(ctx, key, &cached)
	if err != nil {
		s.log.Warn().Err(err).Str("period", periodID).Msg("period cache read failed")
	}
	if ok {
		return cached, nil
	}

	arts, err := s.curator.CurateAt(ctx, periodID, limit, now)
	if err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.Curated(periodID, len(arts))
	}

	if len(arts) > 0 && ctx.Err() == nil {
		if err := s.bucket.SetJSON(ctx, key, arts); err != nil {
			s.log.Warn().Err(err).Str("period", periodID).Msg("period cache write failed")
		}
	}
	return arts, nil
}

func periodCacheKey(periodID string, limit int, now time.Time) string {
	return fmt.Sprintf("%s:%d:%s", periodID, limit, now.UTC().Format(time.DateOnly))
}
