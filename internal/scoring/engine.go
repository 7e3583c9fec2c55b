// Package scoring computes the five-axis radar scores and letter grade of a
// listing. The scores are presentational; risk.Classify stays authoritative
// for the risk level.
package scoring

import (
	"sort"
	"strings"

	"github.com/seogyeonga/auction-radar/internal/domain"
	"github.com/seogyeonga/auction-radar/internal/pricing"
	"github.com/seogyeonga/auction-radar/internal/risk"
)

const (
	baseLegal    = 70
	basePrice    = 50
	baseLocation = 60
	baseTenant   = 70
	baseRounds   = 80
)

// Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	rules Rules
}

func NewEngine(r Rules) *Engine {
	return &Engine{rules: r}
}

// Score maps facts onto the five category scores, each clamped to [0,100].
func (e *Engine) Score(f domain.ListingFacts) domain.CategoryScoreSet {
	f = f.Normalize()
	remarks := risk.Compact(f.Remarks)

	s := domain.CategoryScoreSet{
		LegalRisk:            baseLegal,
		PriceCompetitiveness: basePrice,
		LocationDesirability: baseLocation,
		TenantRisk:           baseTenant,
		FailedRoundsScore:    baseRounds,
	}

	switch risk.Classify(f).Level {
	case domain.RiskSafe:
		s.LegalRisk = 90
	case domain.RiskDanger:
		s.LegalRisk = 30
	default:
		s.LegalRisk = 60
	}
	// Deductions are cumulative.
	if strings.Contains(remarks, "유치권") {
		s.LegalRisk -= 30
	}
	if strings.Contains(remarks, "가압류") {
		s.LegalRisk -= 10
	}
	if strings.Contains(remarks, "선순위") {
		s.LegalRisk -= 20
	}

	if strings.Contains(remarks, "임차인") || strings.Contains(remarks, "대항력") {
		s.TenantRisk = 40
	}

	if f.AppraisalPrice > 0 && f.MinimumBidPrice > 0 {
		s.PriceCompetitiveness = pricing.TierFor(pricing.DiscountPercent(f.AppraisalPrice, f.MinimumBidPrice)).Score()
	}

	s.FailedRoundsScore = roundsScore(f.AuctionRound)
	s.LocationDesirability = e.locationScore(f.Address)

	return clampAll(s)
}

// Evaluate bundles the assessment, scores and grade of a stored listing.
func (e *Engine) Evaluate(l domain.Listing) domain.ListingView {
	f := l.Facts()
	scores := e.Score(f)
	assessment := risk.Classify(f)
	m := pricing.Derive(f.AppraisalPrice, f.MinimumBidPrice)
	g := GradeFor(scores)
	return domain.ListingView{
		Listing:    l,
		Assessment: assessment,
		Scores:     scores,
		Average:    scores.Average(),
		Grade:      g,
		GradeLabel: g.Label(),
		Pricing: domain.PriceMetrics{
			DiscountPercent:     m.Discount,
			Tier:                string(m.Tier),
			TierScore:           m.Tier.Score(),
			BidExceedsAppraisal: m.BidExceedsAppraisal,
			AppraisalText:       pricing.Format(f.AppraisalPrice),
			MinimumBidText:      pricing.Format(f.MinimumBidPrice),
		},
		Color: assessment.Level.Color(),
	}
}

// Rank evaluates listings and returns the top results by average score.
// Ties keep the input order.
func (e *Engine) Rank(listings []domain.Listing, limit int) []domain.ListingView {
	out := make([]domain.ListingView, 0, len(listings))
	for _, l := range listings {
		out = append(out, e.Evaluate(l))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Average > out[j].Average })
	if limit <= 0 {
		limit = 5
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GradeFor turns the average score into a letter grade.
func GradeFor(s domain.CategoryScoreSet) domain.Grade {
	avg := s.Average()
	switch {
	case avg >= 80:
		return domain.GradeA
	case avg >= 70:
		return domain.GradeB
	case avg >= 60:
		return domain.GradeC
	case avg >= 50:
		return domain.GradeD
	default:
		return domain.GradeF
	}
}

func roundsScore(round int) int {
	switch {
	case round <= 1:
		return 90 // new listing
	case round == 2:
		return 70
	case round == 3:
		return 50
	default:
		return 30
	}
}

func (e *Engine) locationScore(address string) int {
	if containsAny(address, e.rules.PremiumDistricts) {
		return 90
	}
	if containsAny(address, e.rules.GoodDistricts) {
		return 75
	}
	return baseLocation
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clampAll(s domain.CategoryScoreSet) domain.CategoryScoreSet {
	s.LegalRisk = clamp(s.LegalRisk, 0, 100)
	s.PriceCompetitiveness = clamp(s.PriceCompetitiveness, 0, 100)
	s.LocationDesirability = clamp(s.LocationDesirability, 0, 100)
	s.TenantRisk = clamp(s.TenantRisk, 0, 100)
	s.FailedRoundsScore = clamp(s.FailedRoundsScore, 0, 100)
	return s
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
