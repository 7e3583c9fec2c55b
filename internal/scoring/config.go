package scoring

import (
	"encoding/json"
	"fmt"
	"os"
)

// Rules defines the district lists used for location desirability.
type Rules struct {
	PremiumDistricts []string `json:"premium_districts"`
	GoodDistricts    []string `json:"good_districts"`
}

// DefaultRules returns the Seoul district tiers.
func DefaultRules() Rules {
	return Rules{
		PremiumDistricts: []string{"강남구", "서초구", "송파구", "용산구", "마포구"},
		GoodDistricts:    []string{"영등포구", "성동구", "광진구", "동작구", "양천구"},
	}
}

// LoadRulesFromFile loads rules from JSON file. Lists missing from the file
// keep their defaults.
func LoadRulesFromFile(path string) (Rules, error) {
	r := DefaultRules()
	b, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("read rules file: %w", err)
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return DefaultRules(), fmt.Errorf("unmarshal rules: %w", err)
	}
	return r, nil
}
