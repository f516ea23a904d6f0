package collection

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) List(ctx context.Context, userID string) ([]Entry, error) {
	const query = `
		SELECT id, user_id, artwork_id, title, artist, year, image, period, medium, location, description, created_at
		FROM saved_artworks
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.ArtworkID, &e.Title, &e.Artist, &e.Year, &e.Image,
			&e.Period, &e.Medium, &e.Location, &e.Description, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Insert relies on the (user_id, artwork_id) unique key so that concurrent
// saves of one artwork produce a single row.
func (r *PostgresRepo) Insert(ctx context.Context, e Entry) (Entry, error) {
	const query = `
		INSERT INTO saved_artworks
			(user_id, artwork_id, title, artist, year, image, period, medium, location, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, artwork_id) DO NOTHING
		RETURNING id, created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query,
		e.UserID, e.ArtworkID, e.Title, e.Artist, e.Year, e.Image,
		e.Period, e.Medium, e.Location, e.Description,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrAlreadySaved
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, userID string, artworkID int) error {
	const query = `DELETE FROM saved_artworks WHERE user_id = $1 AND artwork_id = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, userID, artworkID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Exists(ctx context.Context, userID string, artworkID int) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM saved_artworks WHERE user_id = $1 AND artwork_id = $2)`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var exists bool
	err := r.db.QueryRow(timeoutCtx, query, userID, artworkID).Scan(&exists)
	return exists, err
}
