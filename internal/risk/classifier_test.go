package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seogyeonga/auction-radar/internal/domain"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		facts  domain.ListingFacts
		level  domain.RiskLevel
		reason string
	}{
		{
			name:   "first round, clean remarks",
			facts:  domain.ListingFacts{AuctionRound: 1},
			level:  domain.RiskSafe,
			reason: "권리관계 단순",
		},
		{
			name:   "single critical keyword",
			facts:  domain.ListingFacts{AuctionRound: 1, Remarks: "유치권 신고 있음"},
			level:  domain.RiskDanger,
			reason: "유치권",
		},
		{
			name:   "all critical keywords joined in order",
			facts:  domain.ListingFacts{Remarks: "선순위근저당, 법정지상권 성립 여지, 유치권"},
			level:  domain.RiskDanger,
			reason: "유치권, 법정지상권, 선순위근저당",
		},
		{
			name:   "senior flag without keyword",
			facts:  domain.ListingFacts{AuctionRound: 1, HasSeniorEncumbrance: true},
			level:  domain.RiskDanger,
			reason: "선순위 권리 존재",
		},
		{
			name:   "senior flag with keyword keeps keyword reason",
			facts:  domain.ListingFacts{Remarks: "유치권", HasSeniorEncumbrance: true},
			level:  domain.RiskDanger,
			reason: "유치권",
		},
		{
			name:   "critical beats caution",
			facts:  domain.ListingFacts{Remarks: "임차인 점유 중, 유치권 주장"},
			level:  domain.RiskDanger,
			reason: "유치권",
		},
		{
			name:   "first caution keyword by list order",
			facts:  domain.ListingFacts{Remarks: "임차인 있음, 가압류 등기"},
			level:  domain.RiskCaution,
			reason: "가압류 있음 (확인 필요)",
		},
		{
			name:   "land-use right alone is caution",
			facts:  domain.ListingFacts{Remarks: "지상권 설정"},
			level:  domain.RiskCaution,
			reason: "지상권 있음 (확인 필요)",
		},
		{
			name:   "tenant flag without keyword",
			facts:  domain.ListingFacts{HasOccupyingTenant: true, AuctionRound: 4},
			level:  domain.RiskCaution,
			reason: "임차인 있음 (보증금 확인 필요)",
		},
		{
			name:   "third round",
			facts:  domain.ListingFacts{AuctionRound: 3},
			level:  domain.RiskCaution,
			reason: "3차 유찰 (원인 확인 필요)",
		},
		{
			name:   "fifth round",
			facts:  domain.ListingFacts{AuctionRound: 5},
			level:  domain.RiskCaution,
			reason: "5차 유찰 (원인 확인 필요)",
		},
		{
			name:   "second round",
			facts:  domain.ListingFacts{AuctionRound: 2},
			level:  domain.RiskCaution,
			reason: "2차 경매 (유찰 사유 확인)",
		},
		{
			name:   "round zero clamps to one",
			facts:  domain.ListingFacts{AuctionRound: 0},
			level:  domain.RiskSafe,
			reason: "권리관계 단순",
		},
		{
			name:   "negative round clamps to one",
			facts:  domain.ListingFacts{AuctionRound: -3},
			level:  domain.RiskSafe,
			reason: "권리관계 단순",
		},
		{
			name:   "substring containment is not tokenized",
			facts:  domain.ListingFacts{Remarks: "강선순위근저당권자"},
			level:  domain.RiskDanger,
			reason: "선순위근저당",
		},
		{
			name:   "bid above appraisal does not affect level",
			facts:  domain.ListingFacts{AppraisalPrice: 100, MinimumBidPrice: 500, AuctionRound: 1},
			level:  domain.RiskSafe,
			reason: "권리관계 단순",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tc.facts)
			assert.Equal(t, tc.level, got.Level)
			assert.Equal(t, tc.reason, got.Reason)
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	f := domain.ListingFacts{
		AppraisalPrice:     900_000_000,
		MinimumBidPrice:    576_000_000,
		AuctionRound:       3,
		Remarks:            "대항력 있는 임차인, 명도 필요",
		HasOccupyingTenant: true,
		Address:            "서울특별시 마포구 아현동",
	}
	first := Classify(f)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Classify(f))
	}
}

func TestClassifySeniorMortgageWithSpace(t *testing.T) {
	t.Parallel()

	got := Classify(domain.ListingFacts{Remarks: "유치권 있음, 선순위 근저당 설정", AuctionRound: 1})
	assert.Equal(t, domain.RiskDanger, got.Level)
	assert.Contains(t, got.Reason, "유치권")
	assert.Contains(t, got.Reason, "선순위근저당")
}

func TestFromTaggedAgreesWithClassify(t *testing.T) {
	t.Parallel()

	inputs := []domain.ListingFacts{
		{AuctionRound: 1},
		{AuctionRound: 2},
		{AuctionRound: 3},
		{Remarks: "유치권"},
		{Remarks: "가처분"},
		{HasSeniorEncumbrance: true},
		{HasOccupyingTenant: true},
	}
	for _, f := range inputs {
		want := Classify(f)
		assert.Equal(t, want, FromTagged(want.Level.Label(), want.Reason))
		assert.Equal(t, want, FromTagged(string(want.Level), want.Reason))
	}
}

func TestFromTaggedUnknownTag(t *testing.T) {
	t.Parallel()

	got := FromTagged("???", " 확인 필요 ")
	assert.Equal(t, domain.RiskCaution, got.Level)
	assert.Equal(t, "확인 필요", got.Reason)
}

func TestStale(t *testing.T) {
	t.Parallel()

	l := domain.Listing{AuctionRound: 1}
	fresh, stale := Stale(l)
	assert.True(t, stale, "unclassified listing is stale")
	assert.Equal(t, domain.RiskSafe, fresh.Level)

	l.RiskLevel = domain.RiskLevel("안전")
	l.RiskReason = "권리관계 단순"
	_, stale = Stale(l)
	assert.False(t, stale, "Korean tag matching the rules is current")

	l.Remarks = "가압류"
	fresh, stale = Stale(l)
	assert.True(t, stale)
	assert.Equal(t, domain.RiskCaution, fresh.Level)
}
