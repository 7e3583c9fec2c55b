// Package risk holds the authoritative rule-based risk classification of
// auction listings.
package risk

import (
	"fmt"
	"strings"

	"github.com/seogyeonga/auction-radar/internal/domain"
)

// Critical keywords force Danger. Order is the order they appear in reasons.
var CriticalKeywords = []string{"유치권", "법정지상권", "선순위전세권", "선순위근저당"}

// Caution keywords; the first match names the reason.
var CautionKeywords = []string{"대항력", "가압류", "가처분", "지상권", "임차인", "점유", "명도"}

const (
	reasonSeniorRights = "선순위 권리 존재"
	reasonTenant       = "임차인 있음 (보증금 확인 필요)"
	reasonSecondRound  = "2차 경매 (유찰 사유 확인)"
	reasonSimple       = "권리관계 단순"
)

// Classify derives the risk level and reason from listing facts. Tiers are
// checked in order: critical keywords or senior rights, caution keywords or
// tenant, three or more rounds, second round, otherwise Safe.
func Classify(f domain.ListingFacts) domain.RiskAssessment {
	f = f.Normalize()
	text := Compact(f.Remarks)

	if hits := matchAll(text, CriticalKeywords); len(hits) > 0 {
		return domain.RiskAssessment{Level: domain.RiskDanger, Reason: strings.Join(hits, ", ")}
	}
	if f.HasSeniorEncumbrance {
		return domain.RiskAssessment{Level: domain.RiskDanger, Reason: reasonSeniorRights}
	}

	if kw, ok := matchFirst(text, CautionKeywords); ok {
		return domain.RiskAssessment{Level: domain.RiskCaution, Reason: kw + " 있음 (확인 필요)"}
	}
	if f.HasOccupyingTenant {
		return domain.RiskAssessment{Level: domain.RiskCaution, Reason: reasonTenant}
	}

	switch {
	case f.AuctionRound >= 3:
		return domain.RiskAssessment{
			Level:  domain.RiskCaution,
			Reason: fmt.Sprintf("%d차 유찰 (원인 확인 필요)", f.AuctionRound),
		}
	case f.AuctionRound == 2:
		return domain.RiskAssessment{Level: domain.RiskCaution, Reason: reasonSecondRound}
	}
	return domain.RiskAssessment{Level: domain.RiskSafe, Reason: reasonSimple}
}

// FromTagged builds an assessment from a stored risk tag and reason, as used
// when rendering records that were classified earlier. Unknown tags read as
// Caution.
func FromTagged(tag, reason string) domain.RiskAssessment {
	level, ok := domain.ParseRiskLevel(tag)
	if !ok {
		level = domain.RiskCaution
	}
	return domain.RiskAssessment{Level: level, Reason: strings.TrimSpace(reason)}
}

// Stale reports whether the stored classification of l differs from what
// Classify derives from its facts.
func Stale(l domain.Listing) (domain.RiskAssessment, bool) {
	fresh := Classify(l.Facts())
	stored := FromTagged(string(l.RiskLevel), l.RiskReason)
	return fresh, l.RiskLevel == "" || stored != fresh
}

// Compact strips all whitespace so that "선순위 근저당" matches "선순위근저당".
// Matching is plain substring containment on the result.
func Compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Contains reports whether the remarks contain keyword, ignoring whitespace.
func Contains(remarks, keyword string) bool {
	return strings.Contains(Compact(remarks), keyword)
}

func matchAll(text string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

func matchFirst(text string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}
