package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// StatusActive marks a listing that is still open for bidding.
const StatusActive = "진행중"

var ErrInvalidListing = errors.New("invalid listing")

// Listing is the stored auction record.
type Listing struct {
	ID              string    `json:"id"`
	Court           string    `json:"court"`
	CaseNo          string    `json:"case_no"`
	Address         string    `json:"address"`
	Sido            string    `json:"sido,omitempty"`
	Gugun           string    `json:"gugun,omitempty"`
	Dong            string    `json:"dong,omitempty"`
	AptName         string    `json:"apt_name,omitempty"`
	AreaSQM         float64   `json:"area_sqm,omitempty"`
	Floor           string    `json:"floor,omitempty"`
	AppraisalPrice  int64     `json:"appraisal_price"`
	MinimumBidPrice int64     `json:"min_price"`
	AuctionDate     string    `json:"auction_date,omitempty"` // YYYY-MM-DD
	AuctionRound    int       `json:"auction_count"`
	Status          string    `json:"status"`
	RiskLevel       RiskLevel `json:"risk_level,omitempty"`
	RiskReason      string    `json:"risk_reason,omitempty"`
	HasTenant       bool      `json:"has_tenant"`
	HasSeniorRights bool      `json:"has_senior_rights"`
	Remarks         string    `json:"remarks,omitempty"`
	Lat             float64   `json:"lat,omitempty"`
	Lng             float64   `json:"lng,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Validate checks the fields the store and the rule engine rely on.
func (l Listing) Validate() error {
	var problems []string
	if strings.TrimSpace(l.Court) == "" {
		problems = append(problems, "court is required")
	}
	if strings.TrimSpace(l.CaseNo) == "" {
		problems = append(problems, "case_no is required")
	}
	if strings.TrimSpace(l.Address) == "" {
		problems = append(problems, "address is required")
	}
	if l.AppraisalPrice < 0 || l.MinimumBidPrice < 0 {
		problems = append(problems, "prices must be >= 0")
	}
	if l.AuctionDate != "" {
		if _, err := time.Parse(DateLayout, l.AuctionDate); err != nil {
			problems = append(problems, "auction_date must be YYYY-MM-DD")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidListing, strings.Join(problems, "; "))
	}
	return nil
}

// Facts converts the stored record into rule-engine input.
func (l Listing) Facts() ListingFacts {
	return ListingFacts{
		AppraisalPrice:       l.AppraisalPrice,
		MinimumBidPrice:      l.MinimumBidPrice,
		AuctionRound:         l.AuctionRound,
		Remarks:              l.Remarks,
		HasSeniorEncumbrance: l.HasSeniorRights,
		HasOccupyingTenant:   l.HasTenant,
		Address:              l.Address,
	}.Normalize()
}

// DateLayout is the wire format of auction dates.
const DateLayout = "2006-01-02"

// ListingFacts is the input of the rule engine.
type ListingFacts struct {
	AppraisalPrice       int64  `json:"appraisal_price"`
	MinimumBidPrice      int64  `json:"min_price"`
	AuctionRound         int    `json:"auction_count"`
	Remarks              string `json:"remarks"`
	HasSeniorEncumbrance bool   `json:"has_senior_rights"`
	HasOccupyingTenant   bool   `json:"has_tenant"`
	Address              string `json:"address"`
}

// Normalize substitutes safe defaults for out-of-range values:
// negative prices become 0 and a round below 1 becomes 1.
func (f ListingFacts) Normalize() ListingFacts {
	if f.AppraisalPrice < 0 {
		f.AppraisalPrice = 0
	}
	if f.MinimumBidPrice < 0 {
		f.MinimumBidPrice = 0
	}
	if f.AuctionRound < 1 {
		f.AuctionRound = 1
	}
	f.Remarks = strings.TrimSpace(f.Remarks)
	f.Address = strings.TrimSpace(f.Address)
	return f
}

// RiskLevel is the authoritative three-level classification.
type RiskLevel string

const (
	RiskSafe    RiskLevel = "safe"
	RiskCaution RiskLevel = "caution"
	RiskDanger  RiskLevel = "danger"
)

// ParseRiskLevel accepts both the English names and the Korean tags
// (안전/주의/위험) found in stored records.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "safe", "안전":
		return RiskSafe, true
	case "caution", "주의":
		return RiskCaution, true
	case "danger", "위험":
		return RiskDanger, true
	}
	return "", false
}

// Label returns the Korean tag.
func (l RiskLevel) Label() string {
	switch l {
	case RiskSafe:
		return "안전"
	case RiskCaution:
		return "주의"
	case RiskDanger:
		return "위험"
	}
	return ""
}

// Color returns the badge color used by the presentation layer.
func (l RiskLevel) Color() string {
	switch l {
	case RiskSafe:
		return "green"
	case RiskCaution:
		return "yellow"
	case RiskDanger:
		return "red"
	}
	return "gray"
}

type RiskAssessment struct {
	Level  RiskLevel `json:"level"`
	Reason string    `json:"reason"`
}

// CategoryScoreSet holds the five radar axes, each in [0,100].
type CategoryScoreSet struct {
	LegalRisk            int `json:"legal_risk"`
	PriceCompetitiveness int `json:"price_competitiveness"`
	LocationDesirability int `json:"location_desirability"`
	TenantRisk           int `json:"tenant_risk"`
	FailedRoundsScore    int `json:"failed_rounds_score"`
}

// Average is the plain mean of the five scores.
func (s CategoryScoreSet) Average() float64 {
	sum := s.LegalRisk + s.PriceCompetitiveness + s.LocationDesirability + s.TenantRisk + s.FailedRoundsScore
	return float64(sum) / 5
}

// Grade is the letter summary of a CategoryScoreSet.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

func (g Grade) Label() string {
	switch g {
	case GradeA:
		return "매우 좋음"
	case GradeB:
		return "좋음"
	case GradeC:
		return "보통"
	case GradeD:
		return "주의"
	}
	return "위험"
}

// PriceMetrics are the derived pricing values of a listing.
type PriceMetrics struct {
	DiscountPercent     int    `json:"discount_percent"`
	Tier                string `json:"tier"`
	TierScore           int    `json:"tier_score"`
	BidExceedsAppraisal bool   `json:"bid_exceeds_appraisal,omitempty"`
	AppraisalText       string `json:"appraisal_text"`
	MinimumBidText      string `json:"min_price_text"`
}

// ListingView is the detail payload served for a single listing.
type ListingView struct {
	Listing    Listing          `json:"listing"`
	Assessment RiskAssessment   `json:"assessment"`
	Scores     CategoryScoreSet `json:"scores"`
	Average    float64          `json:"average"`
	Grade      Grade            `json:"grade"`
	GradeLabel string           `json:"grade_label"`
	Pricing    PriceMetrics     `json:"pricing"`
	Color      string           `json:"color"`
}
