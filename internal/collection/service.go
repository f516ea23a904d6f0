package collection

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the user's entries, most recently saved first.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Save adds an artwork. A second save of the same artwork returns
// ErrAlreadySaved and leaves the first entry untouched.
func (s *Service) Save(ctx context.Context, userID string, in SaveInput) (Entry, error) {
	e, err := s.repo.Insert(ctx, in.entry(userID))
	if err != nil {
		return Entry{}, fmt.Errorf("save artwork %d: %w", in.ArtworkID, err)
	}
	return e, nil
}

func (s *Service) Remove(ctx context.Context, userID string, artworkID int) error {
	if err := s.repo.Delete(ctx, userID, artworkID); err != nil {
		return fmt.Errorf("remove artwork %d: %w", artworkID, err)
	}
	return nil
}

func (s *Service) IsSaved(ctx context.Context, userID string, artworkID int) (bool, error) {
	return s.repo.Exists(ctx, userID, artworkID)
}
