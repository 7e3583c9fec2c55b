package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seogyeonga/auction-radar/internal/domain"
)

// AddFavorite marks a listing as watched by userID. It reports false when the
// pair already existed. User ids are opaque; authentication lives elsewhere.
func (s *SQLiteStore) AddFavorite(ctx context.Context, userID, listingID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, listing_id, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		userID, listingID, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

// RemoveFavorite reports false when the pair did not exist.
func (s *SQLiteStore) RemoveFavorite(ctx context.Context, userID, listingID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND listing_id = ?`, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (s *SQLiteStore) IsFavorite(ctx context.Context, userID, listingID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND listing_id = ?`, userID, listingID,
	).Scan(&n)
	return n > 0, err
}

// Favorites returns the listings watched by userID, soonest auction first.
func (s *SQLiteStore) Favorites(ctx context.Context, userID string) ([]domain.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+prefixed("a.", listingColumns)+`
FROM favorites f
JOIN auctions a ON a.id = f.listing_id
WHERE f.user_id = ?
ORDER BY a.auction_date ASC, a.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// prefixed qualifies every column of a comma-separated list with prefix.
func prefixed(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, c := range parts {
		parts[i] = prefix + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}
