// Package report renders plain-text analyses, AI prompts and reminders for a
// listing. Output embeds prices and risk reasons verbatim and contains no
// HTML.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/seogyeonga/auction-radar/internal/domain"
	"github.com/seogyeonga/auction-radar/internal/pricing"
	"github.com/seogyeonga/auction-radar/internal/risk"
)

const defaultAptName = "아파트"

var overall = map[domain.RiskLevel]string{
	domain.RiskSafe:    "하",
	domain.RiskCaution: "중",
	domain.RiskDanger:  "상",
}

// Analysis is the rule-based report shown when no AI summary is available.
func Analysis(l domain.Listing) string {
	f := l.Facts()
	a := risk.Classify(f)

	var b strings.Builder
	fmt.Fprintf(&b, "## 종합 위험도: %s (%s)\n", overall[a.Level], a.Level.Label())
	fmt.Fprintf(&b, "\n### %s 분석 결과\n\n", aptName(l))

	if a.Level == domain.RiskSafe {
		b.WriteString("**권리관계 양호**\n\n")
		b.WriteString("특별한 권리상 하자가 발견되지 않았습니다. 비교적 안전한 물건으로 보입니다.\n")
	} else {
		b.WriteString("**주의사항**\n\n")
		fmt.Fprintf(&b, "- 판정 사유: %s\n", a.Reason)
		notes := keywordNotes(f.Remarks + " " + a.Reason)
		if len(notes) == 0 {
			b.WriteString("- 위험 요소 상세 확인 필요\n")
		}
		for _, n := range notes {
			b.WriteString(n + "\n")
		}
	}

	if f.AppraisalPrice > 0 && f.MinimumBidPrice > 0 {
		b.WriteString("\n---\n### 가격 분석\n")
		fmt.Fprintf(&b, "- 감정가 %s / 최저가 %s\n",
			pricing.FormatWithSuffix(f.AppraisalPrice, "원"),
			pricing.FormatWithSuffix(f.MinimumBidPrice, "원"))
		m := pricing.Derive(f.AppraisalPrice, f.MinimumBidPrice)
		if m.BidExceedsAppraisal {
			b.WriteString("- 최저가가 감정가보다 높음: 자료 확인 필요\n")
		} else {
			fmt.Fprintf(&b, "- 감정가 대비 **%d%%** 할인 (가격 등급 %s)\n", m.Discount, m.Tier)
		}
		fmt.Fprintf(&b, "- 현재 **%d차** 경매\n", f.AuctionRound)
		if f.AuctionRound >= 3 {
			b.WriteString("- 3차 이상 유찰: 입지나 권리관계 문제 가능성\n")
		}
	}

	b.WriteString("\n---\n### 입찰 전 체크리스트\n")
	b.WriteString("1. 등기부등본 최신본 발급\n")
	b.WriteString("2. 현황조사서 확인\n")
	b.WriteString("3. 현장 방문\n")
	b.WriteString("4. 예상 비용 계산\n")
	b.WriteString("\n*이 분석은 참고용이며, 전문가 상담을 권장합니다.*\n")
	return b.String()
}

func keywordNotes(text string) []string {
	var notes []string
	if risk.Contains(text, "유치권") {
		notes = append(notes, "- **유치권**: 경매로 소멸하지 않을 수 있음. 현장 확인 필수")
	}
	if risk.Contains(text, "임차인") || risk.Contains(text, "대항력") {
		notes = append(notes, "- **임차인**: 보증금 인수 가능성. 배당요구 확인 필요")
	}
	if risk.Contains(text, "가압류") {
		notes = append(notes, "- **가압류**: 대부분 매각으로 소멸. 상대적으로 안전")
	}
	if risk.Contains(text, "선순위") {
		notes = append(notes, "- **선순위 권리**: 인수 여부 확인 필요")
	}
	return notes
}

// Prompt builds the analysis request handed to an external AI collaborator.
func Prompt(l domain.Listing) string {
	f := l.Facts()
	a := risk.Classify(f)

	reason := a.Reason
	if reason == "" {
		reason = "없음"
	}
	date := l.AuctionDate
	if date == "" {
		date = "미정"
	}

	var b strings.Builder
	b.WriteString("다음 서울 아파트 경매 물건의 권리관계와 투자 위험을 분석해 주세요.\n\n")
	fmt.Fprintf(&b, "- 주소: %s\n", orDefault(l.Address, "정보 없음"))
	fmt.Fprintf(&b, "- 단지명: %s\n", aptName(l))
	fmt.Fprintf(&b, "- 전용면적: %.1f㎡\n", l.AreaSQM)
	fmt.Fprintf(&b, "- 관할법원: %s\n", orDefault(l.Court, "정보 없음"))
	fmt.Fprintf(&b, "- 사건번호: %s\n", orDefault(l.CaseNo, "정보 없음"))
	fmt.Fprintf(&b, "- 감정가: %s\n", pricing.FormatWithSuffix(f.AppraisalPrice, "원"))
	fmt.Fprintf(&b, "- 최저가: %s\n", pricing.FormatWithSuffix(f.MinimumBidPrice, "원"))
	fmt.Fprintf(&b, "- 할인율: %.1f%%\n", pricing.DiscountRate(f.AppraisalPrice, f.MinimumBidPrice))
	fmt.Fprintf(&b, "- 경매차수: %d차\n", f.AuctionRound)
	fmt.Fprintf(&b, "- 입찰일: %s\n", date)
	fmt.Fprintf(&b, "- 위험도: %s\n", a.Level.Label())
	fmt.Fprintf(&b, "- 위험 사유: %s\n", reason)
	if f.Remarks != "" {
		fmt.Fprintf(&b, "- 비고: %s\n", f.Remarks)
	}
	b.WriteString("\n종합 위험도(상/중/하), 주요 권리 이슈, 입찰 전 확인 사항을 정리해 주세요.\n")
	return b.String()
}

// Reminder renders the bid-date notification for a listing daysUntil days
// before its auction.
func Reminder(l domain.Listing, daysUntil int) string {
	var urgency string
	switch {
	case daysUntil <= 1:
		urgency = "[긴급]"
	case daysUntil <= 3:
		urgency = "[알림]"
	default:
		urgency = "[안내]"
	}

	return fmt.Sprintf("%s 입찰일 D-%d\n\n%s\n최저가: %s\n입찰일: %s\n\n지금 바로 확인하세요!",
		urgency, daysUntil, aptName(l), pricing.Compact(l.MinimumBidPrice), l.AuctionDate)
}

// DaysUntil counts calendar days from today to the auction date. Both dates
// are compared as UTC midnights so DST shifts in today's zone do not matter.
func DaysUntil(auctionDate string, today time.Time) (int, error) {
	d, err := time.Parse(domain.DateLayout, auctionDate)
	if err != nil {
		return 0, fmt.Errorf("parse auction date %q: %w", auctionDate, err)
	}
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(t).Hours()) / 24, nil
}

// ReminderDays are the days before an auction on which a reminder is sent.
var ReminderDays = []int{3, 1}

// ReminderDue reports whether a reminder goes out daysUntil days before the
// auction.
func ReminderDue(daysUntil int) bool {
	for _, d := range ReminderDays {
		if d == daysUntil {
			return true
		}
	}
	return false
}

func aptName(l domain.Listing) string {
	return orDefault(l.AptName, defaultAptName)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
