package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seogyeonga/auction-radar/internal/domain"
)

func TestAnalysisSafe(t *testing.T) {
	t.Parallel()

	out := Analysis(domain.Listing{
		AptName:         "래미안",
		AppraisalPrice:  1_500_000_000,
		MinimumBidPrice: 1_050_000_000,
		AuctionRound:    1,
	})

	assert.Contains(t, out, "종합 위험도: 하 (안전)")
	assert.Contains(t, out, "### 래미안 분석 결과")
	assert.Contains(t, out, "권리관계 양호")
	assert.Contains(t, out, "감정가 15억원 / 최저가 10억 5,000만원")
	assert.Contains(t, out, "**30%** 할인")
	assert.NotContains(t, out, "3차 이상 유찰")
	assert.NotContains(t, out, "<")
}

func TestAnalysisDanger(t *testing.T) {
	t.Parallel()

	out := Analysis(domain.Listing{
		Remarks:         "유치권 있음, 선순위 근저당 설정, 임차인 점유",
		AppraisalPrice:  1_000_000_000,
		MinimumBidPrice: 512_000_000,
		AuctionRound:    4,
	})

	assert.Contains(t, out, "종합 위험도: 상 (위험)")
	assert.Contains(t, out, "### 아파트 분석 결과")
	assert.Contains(t, out, "판정 사유: 유치권, 선순위근저당")
	assert.Contains(t, out, "**유치권**")
	assert.Contains(t, out, "**임차인**")
	assert.Contains(t, out, "**선순위 권리**")
	assert.NotContains(t, out, "**가압류**")
	assert.Contains(t, out, "3차 이상 유찰")
}

func TestAnalysisCautionWithoutNotes(t *testing.T) {
	t.Parallel()

	out := Analysis(domain.Listing{AuctionRound: 2})
	assert.Contains(t, out, "종합 위험도: 중 (주의)")
	assert.Contains(t, out, "2차 경매 (유찰 사유 확인)")
	assert.Contains(t, out, "위험 요소 상세 확인 필요")
	assert.NotContains(t, out, "가격 분석")
}

func TestAnalysisFlagsBidAboveAppraisal(t *testing.T) {
	t.Parallel()

	out := Analysis(domain.Listing{AppraisalPrice: 100_000_000, MinimumBidPrice: 120_000_000, AuctionRound: 1})
	assert.Contains(t, out, "최저가가 감정가보다 높음")
}

func TestPrompt(t *testing.T) {
	t.Parallel()

	out := Prompt(domain.Listing{
		Court:           "서울중앙지방법원",
		CaseNo:          "2024타경1000",
		Address:         "서울특별시 강남구 역삼동",
		AreaSQM:         84.5,
		AppraisalPrice:  900_000_000,
		MinimumBidPrice: 600_000_000,
		AuctionRound:    3,
	})

	assert.Contains(t, out, "- 주소: 서울특별시 강남구 역삼동")
	assert.Contains(t, out, "- 단지명: 아파트")
	assert.Contains(t, out, "- 전용면적: 84.5㎡")
	assert.Contains(t, out, "- 감정가: 9억원")
	assert.Contains(t, out, "- 최저가: 6억원")
	assert.Contains(t, out, "- 할인율: 33.3%")
	assert.Contains(t, out, "- 입찰일: 미정")
	assert.Contains(t, out, "- 위험도: 주의")
	assert.Contains(t, out, "- 위험 사유: 3차 유찰 (원인 확인 필요)")
	assert.NotContains(t, out, "- 비고:")
}

func TestReminder(t *testing.T) {
	t.Parallel()

	l := domain.Listing{AptName: "테스트아파트", MinimumBidPrice: 500_000_000, AuctionDate: "2026-10-18"}

	assert.Contains(t, Reminder(l, 1), "[긴급] 입찰일 D-1")
	assert.Contains(t, Reminder(l, 3), "[알림] 입찰일 D-3")
	out := Reminder(l, 7)
	assert.Contains(t, out, "[안내] 입찰일 D-7")
	assert.Contains(t, out, "최저가: 5억")
	assert.Contains(t, out, "입찰일: 2026-10-18")
}

func TestDaysUntil(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, 10, 15, 21, 30, 0, 0, time.UTC)
	n, err := DaysUntil("2026-10-18", today)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = DaysUntil("2026-10-14", today)
	require.NoError(t, err)
	assert.Equal(t, -1, n)

	_, err = DaysUntil("18/10/2026", today)
	assert.Error(t, err)
}

func TestDaysUntilAcrossDSTChange(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// clocks spring forward on 2026-03-08, so only 47 hours separate the midnights
	today := time.Date(2026, 3, 7, 9, 0, 0, 0, ny)
	n, err := DaysUntil("2026-03-09", today)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// fall back on 2026-11-01 makes a 25-hour day
	today = time.Date(2026, 10, 31, 23, 30, 0, 0, ny)
	n, err = DaysUntil("2026-11-01", today)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReminderDue(t *testing.T) {
	t.Parallel()

	assert.True(t, ReminderDue(3))
	assert.True(t, ReminderDue(1))
	for _, d := range []int{-1, 0, 2, 4, 7} {
		assert.False(t, ReminderDue(d), d)
	}
}
