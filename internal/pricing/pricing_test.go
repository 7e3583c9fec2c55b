package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		price int64
		want  string
	}{
		{0, "-"},
		{-5, "-"},
		{1, "1"},
		{9_999, "9,999"},
		{10_000, "1만"},
		{12_345_678, "1,234만"},
		{99_999_999, "9,999만"},
		{100_000_000, "1억"},
		{150_000_000, "1억 5,000만"},
		{1_050_000_000, "10억 5,000만"},
		{1_200_005_000, "12억"},
		{123_456_789_000, "1,234억 5,678만"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Format(tc.price), "Format(%d)", tc.price)
	}
	assert.NotContains(t, Format(99_999_999), "억")
}

func TestFormatWithSuffix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1억 5,000만원", FormatWithSuffix(150_000_000, "원"))
	assert.Equal(t, "5억원", FormatWithSuffix(500_000_000, "원"))
	assert.Equal(t, "640만원", FormatWithSuffix(6_400_000, "원"))
	assert.Equal(t, "9,999원", FormatWithSuffix(9_999, "원"))
	assert.Equal(t, "-", FormatWithSuffix(0, "원"))
}

func TestCompact(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "5억", Compact(550_000_000))
	assert.Equal(t, "6,400만", Compact(64_000_000))
	assert.Equal(t, "-", Compact(0))
}

func TestDiscountPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, DiscountPercent(0, 500_000))
	assert.Equal(t, 0, DiscountPercent(-1, 500_000))
	assert.Equal(t, 30, DiscountPercent(1_500_000_000, 1_050_000_000))
	assert.Equal(t, 20, DiscountPercent(800_000_000, 640_000_000))
	assert.Equal(t, 100, DiscountPercent(800_000_000, 0))
	assert.Equal(t, 0, DiscountPercent(800_000_000, 800_000_000))
	// 39.5 rounds up, 39.4 rounds down.
	assert.Equal(t, 40, DiscountPercent(1000, 605))
	assert.Equal(t, 39, DiscountPercent(1000, 606))
	assert.Equal(t, -25, DiscountPercent(800, 1000))
	// exact halves round away from zero, not to even
	assert.Equal(t, 29, DiscountPercent(1000, 715))
	assert.Equal(t, 31, DiscountPercent(1000, 695))
}

func TestTierBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		discount int
		tier     Tier
		score    int
	}{
		{100, TierA, 95},
		{40, TierA, 95},
		{39, TierB, 80},
		{30, TierB, 80},
		{29, TierC, 65},
		{20, TierC, 65},
		{19, TierD, 50},
		{0, TierD, 50},
		{-10, TierD, 50},
	}
	for _, tc := range cases {
		got := TierFor(tc.discount)
		assert.Equal(t, tc.tier, got, "TierFor(%d)", tc.discount)
		assert.Equal(t, tc.score, got.Score())
	}
}

func TestDerive(t *testing.T) {
	t.Parallel()

	m := Derive(1_500_000_000, 1_050_000_000)
	assert.Equal(t, Metrics{Discount: 30, Tier: TierB}, m)

	over := Derive(800, 1000)
	assert.True(t, over.BidExceedsAppraisal)
	assert.Equal(t, TierD, over.Tier)

	assert.False(t, Derive(0, 1000).BidExceedsAppraisal)
	assert.Equal(t, 0, over.CardDiscount())
	assert.Equal(t, 30, m.CardDiscount())
}

func TestDiscountRate(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 33.3, DiscountRate(900, 600), 0.0001)
	assert.Equal(t, 0.0, DiscountRate(0, 600))
}
