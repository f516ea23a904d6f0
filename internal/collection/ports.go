package collection

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mocks/mock_repository.go -package=mocks

type Repository interface {
	List(ctx context.Context, userID string) ([]Entry, error)
	Insert(ctx context.Context, e Entry) (Entry, error)
	Delete(ctx context.Context, userID string, artworkID int) error
	Exists(ctx context.Context, userID string, artworkID int) (bool, error)
}
