package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/seogyeonga/auction-radar/internal/domain"
	"github.com/seogyeonga/auction-radar/internal/metrics"
	"github.com/seogyeonga/auction-radar/internal/pricing"
	"github.com/seogyeonga/auction-radar/internal/report"
	"github.com/seogyeonga/auction-radar/internal/risk"
	"github.com/seogyeonga/auction-radar/internal/storage"
)

// recommendationPage is the page size used to walk active listings.
const recommendationPage = 200

type AssessResponse struct {
	Facts      domain.ListingFacts     `json:"facts"`
	Assessment domain.RiskAssessment   `json:"assessment"`
	Scores     domain.CategoryScoreSet `json:"scores"`
	Average    float64                 `json:"average"`
	Grade      domain.Grade            `json:"grade"`
	GradeLabel string                  `json:"grade_label"`
	Pricing    domain.PriceMetrics     `json:"pricing"`
	Color      string                  `json:"color"`
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var facts domain.ListingFacts
	if err := json.NewDecoder(r.Body).Decode(&facts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "")
		return
	}

	// Evaluate works on a listing; the facts carry every field it reads.
	v := s.Engine.Evaluate(domain.Listing{
		Address:         facts.Address,
		AppraisalPrice:  facts.AppraisalPrice,
		MinimumBidPrice: facts.MinimumBidPrice,
		AuctionRound:    facts.AuctionRound,
		Remarks:         facts.Remarks,
		HasTenant:       facts.HasOccupyingTenant,
		HasSeniorRights: facts.HasSeniorEncumbrance,
	})
	facts = facts.Normalize()
	metrics.AssessmentsTotal.WithLabelValues(string(v.Assessment.Level)).Inc()

	writeJSON(w, http.StatusOK, AssessResponse{
		Facts:      facts,
		Assessment: v.Assessment,
		Scores:     v.Scores,
		Average:    v.Average,
		Grade:      v.Grade,
		GradeLabel: v.GradeLabel,
		Pricing:    v.Pricing,
		Color:      v.Color,
	})
}

// ListingSummary is the card-sized view of a stored listing.
type ListingSummary struct {
	ID              string           `json:"id"`
	CaseNo          string           `json:"case_no"`
	Court           string           `json:"court"`
	AptName         string           `json:"apt_name,omitempty"`
	Address         string           `json:"address"`
	Gugun           string           `json:"gugun,omitempty"`
	AuctionDate     string           `json:"auction_date,omitempty"`
	AuctionRound    int              `json:"auction_count"`
	AppraisalText   string           `json:"appraisal_text"`
	MinimumBidText  string           `json:"min_price_text"`
	DiscountPercent int              `json:"discount_percent"`
	BidExceeds      bool             `json:"bid_exceeds_appraisal,omitempty"`
	RiskLevel       domain.RiskLevel `json:"risk_level"`
	RiskLabel       string           `json:"risk_label"`
	RiskReason      string           `json:"risk_reason"`
	Color           string           `json:"color"`
}

type ListingsResponse struct {
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Total  int              `json:"total"`
	Items  []ListingSummary `json:"items"`
}

func summarize(l domain.Listing) ListingSummary {
	// Cards render the stored classification; unclassified rows fall back to
	// the rules.
	a := risk.FromTagged(string(l.RiskLevel), l.RiskReason)
	if l.RiskLevel == "" {
		a = risk.Classify(l.Facts())
	}
	f := l.Facts()
	m := pricing.Derive(f.AppraisalPrice, f.MinimumBidPrice)
	return ListingSummary{
		ID:              l.ID,
		CaseNo:          l.CaseNo,
		Court:           l.Court,
		AptName:         l.AptName,
		Address:         l.Address,
		Gugun:           l.Gugun,
		AuctionDate:     l.AuctionDate,
		AuctionRound:    f.AuctionRound,
		AppraisalText:   pricing.Format(f.AppraisalPrice),
		MinimumBidText:  pricing.Format(f.MinimumBidPrice),
		DiscountPercent: m.CardDiscount(),
		BidExceeds:      m.BidExceedsAppraisal,
		RiskLevel:       a.Level,
		RiskLabel:       a.Level.Label(),
		RiskReason:      a.Reason,
		Color:           a.Level.Color(),
	}
}

func parseListFilter(r *http.Request) (storage.ListFilter, error) {
	q := r.URL.Query()
	limit, offset := parseLimitOffset(r, 20, 0)
	f := storage.ListFilter{
		Gugun:  q.Get("gugun"),
		Dong:   q.Get("dong"),
		Sort:   q.Get("sort"),
		Status: domain.StatusActive,
		Limit:  limit,
		Offset: offset,
	}
	if st := q.Get("status"); st != "" {
		f.Status = st
		if st == "all" {
			f.Status = ""
		}
	}

	var err error
	if f.MinPrice, err = parseInt64(q.Get("min_price")); err != nil {
		return f, errors.New("min_price must be an integer")
	}
	if f.MaxPrice, err = parseInt64(q.Get("max_price")); err != nil {
		return f, errors.New("max_price must be an integer")
	}
	for _, part := range splitList(q.Get("rounds")) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return f, errors.New("rounds must be comma-separated integers")
		}
		f.Rounds = append(f.Rounds, n)
	}
	for _, part := range splitList(q.Get("risk")) {
		lv, ok := domain.ParseRiskLevel(part)
		if !ok {
			return f, errors.New("risk must be safe, caution or danger")
		}
		f.RiskLevels = append(f.RiskLevels, lv)
	}
	return f, nil
}

func (s *Server) handleListingsList(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	listings, total, err := s.Repo.List(r.Context(), f)
	if err != nil {
		s.internalError(w, "list listings", err)
		return
	}

	items := make([]ListingSummary, 0, len(listings))
	for _, l := range listings {
		items = append(items, summarize(l))
	}
	writeJSON(w, http.StatusOK, ListingsResponse{
		Limit:  f.Limit,
		Offset: f.Offset,
		Total:  total,
		Items:  items,
	})
}

type CreateListingRequest struct {
	Court           string  `json:"court"`
	CaseNo          string  `json:"case_no"`
	Address         string  `json:"address"`
	Sido            string  `json:"sido"`
	Gugun           string  `json:"gugun"`
	Dong            string  `json:"dong"`
	AptName         string  `json:"apt_name"`
	AreaSQM         float64 `json:"area_sqm"`
	Floor           string  `json:"floor"`
	AppraisalPrice  int64   `json:"appraisal_price"`
	MinimumBidPrice int64   `json:"min_price"`
	AuctionDate     string  `json:"auction_date"`
	AuctionRound    int     `json:"auction_count"`
	HasTenant       bool    `json:"has_tenant"`
	HasSeniorRights bool    `json:"has_senior_rights"`
	Remarks         string  `json:"remarks"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
}

func (req CreateListingRequest) listing() domain.Listing {
	return domain.Listing{
		Court:           strings.TrimSpace(req.Court),
		CaseNo:          strings.TrimSpace(req.CaseNo),
		Address:         strings.TrimSpace(req.Address),
		Sido:            req.Sido,
		Gugun:           req.Gugun,
		Dong:            req.Dong,
		AptName:         req.AptName,
		AreaSQM:         req.AreaSQM,
		Floor:           req.Floor,
		AppraisalPrice:  req.AppraisalPrice,
		MinimumBidPrice: req.MinimumBidPrice,
		AuctionDate:     req.AuctionDate,
		AuctionRound:    req.AuctionRound,
		HasTenant:       req.HasTenant,
		HasSeniorRights: req.HasSeniorRights,
		Remarks:         req.Remarks,
		Lat:             req.Lat,
		Lng:             req.Lng,
	}
}

func (s *Server) handleListingCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "")
		return
	}

	l := req.listing()
	if err := l.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_listing", err.Error())
		return
	}

	ctx := r.Context()
	if _, exists, err := s.Repo.GetByCaseNo(ctx, l.CaseNo); err != nil {
		s.internalError(w, "lookup case number", err)
		return
	} else if exists {
		writeError(w, http.StatusConflict, "duplicate_case_no", l.CaseNo)
		return
	}

	a := risk.Classify(l.Facts())
	l.RiskLevel, l.RiskReason = a.Level, a.Reason

	created, err := s.Repo.Create(ctx, l)
	if err != nil {
		s.internalError(w, "create listing", err)
		return
	}
	metrics.AssessmentsTotal.WithLabelValues(string(a.Level)).Inc()
	s.log.Info("listing created",
		zap.String("id", created.ID),
		zap.String("case_no", created.CaseNo),
		zap.String("risk_level", string(a.Level)),
	)
	writeJSON(w, http.StatusCreated, s.Engine.Evaluate(created))
}

// loadListing resolves {id} and writes the 404/500 response itself when the
// listing cannot be returned.
func (s *Server) loadListing(w http.ResponseWriter, r *http.Request) (domain.Listing, bool) {
	id := chi.URLParam(r, "id")
	l, found, err := s.Repo.Get(r.Context(), id)
	if err != nil {
		s.internalError(w, "get listing", err)
		return domain.Listing{}, false
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "")
		return domain.Listing{}, false
	}
	return l, true
}

func (s *Server) handleListingGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if s.Cache != nil {
		v, hit, err := s.Cache.Get(ctx, id)
		if err != nil {
			s.log.Warn("view cache read failed", zap.String("id", id), zap.Error(err))
		} else if hit {
			writeJSON(w, http.StatusOK, v)
			return
		}
	}

	l, ok := s.loadListing(w, r)
	if !ok {
		return
	}
	v := s.Engine.Evaluate(l)
	metrics.AssessmentsTotal.WithLabelValues(string(v.Assessment.Level)).Inc()

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, v); err != nil {
			s.log.Warn("view cache write failed", zap.String("id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleListingDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	deleted, err := s.Repo.Delete(ctx, id)
	if err != nil {
		s.internalError(w, "delete listing", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not_found", "")
		return
	}
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, id); err != nil {
			s.log.Warn("view cache invalidation failed", zap.String("id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListingReport(w http.ResponseWriter, r *http.Request) {
	l, ok := s.loadListing(w, r)
	if !ok {
		return
	}
	writeText(w, "text/markdown", report.Analysis(l))
}

func (s *Server) handleListingPrompt(w http.ResponseWriter, r *http.Request) {
	l, ok := s.loadListing(w, r)
	if !ok {
		return
	}
	writeText(w, "text/plain", report.Prompt(l))
}

type RecommendationsResponse struct {
	Results []domain.ListingView `json:"results"`
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var active []domain.Listing
	for {
		page, total, err := s.Repo.List(r.Context(), storage.ListFilter{
			Status: domain.StatusActive,
			Limit:  recommendationPage,
			Offset: len(active),
		})
		if err != nil {
			s.internalError(w, "list listings", err)
			return
		}
		active = append(active, page...)
		if len(page) == 0 || len(active) >= total {
			break
		}
	}
	writeJSON(w, http.StatusOK, RecommendationsResponse{Results: s.Engine.Rank(active, limit)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.Repo.Stats(r.Context())
	if err != nil {
		s.internalError(w, "listing stats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	d, err := s.Repo.Districts(r.Context())
	if err != nil {
		s.internalError(w, "list districts", err)
		return
	}
	if d == nil {
		d = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"districts": d})
}

func parseInt64(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
