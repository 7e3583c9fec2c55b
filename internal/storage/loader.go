package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/seogyeonga/auction-radar/internal/domain"
)

// LoadListingsFromFile reads seed listings from a JSON array and validates
// each record.
func LoadListingsFromFile(path string) ([]domain.Listing, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read listings file: %w", err)
	}

	var listings []domain.Listing
	if err := json.Unmarshal(b, &listings); err != nil {
		return nil, fmt.Errorf("unmarshal listings: %w", err)
	}
	for i, l := range listings {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("listing #%d (%s): %w", i, l.CaseNo, err)
		}
	}
	return listings, nil
}
