package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/seogyeonga/auction-radar/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// base settings
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	const createTable = `
CREATE TABLE IF NOT EXISTS auctions (
  id TEXT PRIMARY KEY,
  court TEXT NOT NULL,
  case_no TEXT NOT NULL UNIQUE,
  address TEXT NOT NULL,
  sido TEXT NOT NULL DEFAULT '',
  gugun TEXT NOT NULL DEFAULT '',
  dong TEXT NOT NULL DEFAULT '',
  apt_name TEXT NOT NULL DEFAULT '',
  area_sqm REAL NOT NULL DEFAULT 0,
  floor TEXT NOT NULL DEFAULT '',
  appraisal_price INTEGER NOT NULL DEFAULT 0,
  min_price INTEGER NOT NULL DEFAULT 0,
  auction_date TEXT NOT NULL DEFAULT '',
  auction_count INTEGER NOT NULL DEFAULT 1,
  status TEXT NOT NULL DEFAULT '진행중',
  risk_level TEXT NOT NULL DEFAULT '',
  risk_reason TEXT NOT NULL DEFAULT '',
  has_tenant INTEGER NOT NULL DEFAULT 0,
  has_senior_rights INTEGER NOT NULL DEFAULT 0,
  remarks TEXT NOT NULL DEFAULT '',
  lat REAL NOT NULL DEFAULT 0,
  lng REAL NOT NULL DEFAULT 0,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create auctions table: %w", err)
	}

	const createFavorites = `
CREATE TABLE IF NOT EXISTS favorites (
  user_id TEXT NOT NULL,
  listing_id TEXT NOT NULL REFERENCES auctions(id) ON DELETE CASCADE,
  created_at TIMESTAMP NOT NULL,
  PRIMARY KEY (user_id, listing_id)
);
`
	if _, err := s.db.ExecContext(ctx, createFavorites); err != nil {
		return fmt.Errorf("create favorites table: %w", err)
	}

	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_auctions_gugun ON auctions(gugun);`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_listing ON favorites(listing_id);`,
		`CREATE INDEX IF NOT EXISTS idx_auctions_min_price ON auctions(min_price);`,
		`CREATE INDEX IF NOT EXISTS idx_auctions_auction_date ON auctions(auction_date);`,
	} {
		if _, err := s.db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

const listingColumns = `id, court, case_no, address, sido, gugun, dong, apt_name, area_sqm, floor,
appraisal_price, min_price, auction_date, auction_count, status, risk_level, risk_reason,
has_tenant, has_senior_rights, remarks, lat, lng, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(r rowScanner) (domain.Listing, error) {
	var l domain.Listing
	var level string
	err := r.Scan(
		&l.ID, &l.Court, &l.CaseNo, &l.Address, &l.Sido, &l.Gugun, &l.Dong, &l.AptName, &l.AreaSQM, &l.Floor,
		&l.AppraisalPrice, &l.MinimumBidPrice, &l.AuctionDate, &l.AuctionRound, &l.Status, &level, &l.RiskReason,
		&l.HasTenant, &l.HasSeniorRights, &l.Remarks, &l.Lat, &l.Lng, &l.CreatedAt, &l.UpdatedAt,
	)
	l.RiskLevel = domain.RiskLevel(level)
	return l, err
}

func listingArgs(l domain.Listing) []any {
	return []any{
		l.ID, l.Court, l.CaseNo, l.Address, l.Sido, l.Gugun, l.Dong, l.AptName, l.AreaSQM, l.Floor,
		l.AppraisalPrice, l.MinimumBidPrice, l.AuctionDate, l.AuctionRound, l.Status, string(l.RiskLevel), l.RiskReason,
		l.HasTenant, l.HasSeniorRights, l.Remarks, l.Lat, l.Lng, l.CreatedAt, l.UpdatedAt,
	}
}

func prepare(l domain.Listing, now time.Time) domain.Listing {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = domain.StatusActive
	}
	if l.AuctionRound < 1 {
		l.AuctionRound = 1
	}
	// stored tags may arrive in Korean (안전/주의/위험)
	if lv, ok := domain.ParseRiskLevel(string(l.RiskLevel)); ok {
		l.RiskLevel = lv
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	return l
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM auctions`).Scan(&n)
	return n, err
}

// UpsertMany inserts listings or updates the existing row with the same case
// number. Ids and creation times of existing rows are kept.
func (s *SQLiteStore) UpsertMany(ctx context.Context, items []domain.Listing) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO auctions (`+listingColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(case_no) DO UPDATE SET
  court = excluded.court,
  address = excluded.address,
  sido = excluded.sido,
  gugun = excluded.gugun,
  dong = excluded.dong,
  apt_name = excluded.apt_name,
  area_sqm = excluded.area_sqm,
  floor = excluded.floor,
  appraisal_price = excluded.appraisal_price,
  min_price = excluded.min_price,
  auction_date = excluded.auction_date,
  auction_count = excluded.auction_count,
  status = excluded.status,
  risk_level = excluded.risk_level,
  risk_reason = excluded.risk_reason,
  has_tenant = excluded.has_tenant,
  has_senior_rights = excluded.has_senior_rights,
  remarks = excluded.remarks,
  lat = excluded.lat,
  lng = excluded.lng,
  updated_at = excluded.updated_at
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, l := range items {
		if _, err := stmt.ExecContext(ctx, listingArgs(prepare(l, now))...); err != nil {
			return 0, fmt.Errorf("upsert %s: %w", l.CaseNo, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *SQLiteStore) Create(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	l = prepare(l, time.Now().UTC())
	_, err := s.db.ExecContext(ctx, `
INSERT INTO auctions (`+listingColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, listingArgs(l)...)
	return l, err
}

// Delete removes a listing together with the favorites pointing at it.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	// foreign_keys is per connection; clear favorites explicitly
	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE listing_id = ?`, id); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM auctions WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, tx.Commit()
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Listing, bool, error) {
	return s.getBy(ctx, "id", id)
}

func (s *SQLiteStore) GetByCaseNo(ctx context.Context, caseNo string) (domain.Listing, bool, error) {
	return s.getBy(ctx, "case_no", caseNo)
}

func (s *SQLiteStore) getBy(ctx context.Context, column, value string) (domain.Listing, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM auctions WHERE `+column+` = ?`, value)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, false, nil
	}
	if err != nil {
		return domain.Listing{}, false, err
	}
	return l, true, nil
}

// UpdateRisk stores the authoritative classification of a listing.
func (s *SQLiteStore) UpdateRisk(ctx context.Context, id string, a domain.RiskAssessment) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auctions SET risk_level = ?, risk_reason = ?, updated_at = ? WHERE id = ?`,
		string(a.Level), a.Reason, time.Now().UTC(), id,
	)
	return err
}

// ListFilter narrows List. Zero values mean "no filter".
type ListFilter struct {
	Gugun      string
	Dong       string
	MinPrice   int64
	MaxPrice   int64
	Rounds     []int
	RiskLevels []domain.RiskLevel
	Status     string
	Sort       string // auction_date | price_low | price_high
	Limit      int
	Offset     int
}

func (s *SQLiteStore) List(ctx context.Context, f ListFilter) ([]domain.Listing, int, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	// WHERE builder
	where := make([]string, 0, 6)
	args := make([]any, 0, 8)

	if v := strings.TrimSpace(f.Gugun); v != "" {
		where = append(where, "gugun = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(f.Dong); v != "" {
		where = append(where, "dong = ?")
		args = append(args, v)
	}
	if f.MinPrice > 0 {
		where = append(where, "min_price >= ?")
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		where = append(where, "min_price <= ?")
		args = append(args, f.MaxPrice)
	}
	if len(f.Rounds) > 0 {
		where = append(where, "auction_count IN ("+placeholders(len(f.Rounds))+")")
		for _, r := range f.Rounds {
			args = append(args, r)
		}
	}
	if len(f.RiskLevels) > 0 {
		where = append(where, "risk_level IN ("+placeholders(len(f.RiskLevels))+")")
		for _, lv := range f.RiskLevels {
			args = append(args, string(lv))
		}
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	orderSQL := "ORDER BY auction_date ASC, id"
	switch f.Sort {
	case "price_low":
		orderSQL = "ORDER BY min_price ASC, id"
	case "price_high":
		orderSQL = "ORDER BY min_price DESC, id"
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM auctions "+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rowsSQL := "SELECT " + listingColumns + "\nFROM auctions\n" + whereSQL + "\n" + orderSQL + "\nLIMIT ? OFFSET ?"
	rowsArgs := append(append([]any{}, args...), f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, rowsSQL, rowsArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Stats counts active listings and the Safe ones among them.
type Stats struct {
	Total int `json:"total"`
	Safe  int `json:"safe"`
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(CASE WHEN risk_level = ? THEN 1 ELSE 0 END), 0)
FROM auctions WHERE status = ?`,
		string(domain.RiskSafe), domain.StatusActive,
	).Scan(&st.Total, &st.Safe)
	return st, err
}

// Districts returns the distinct non-empty gugun values, sorted.
func (s *SQLiteStore) Districts(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT gugun FROM auctions WHERE gugun != '' ORDER BY gugun`)
}

// Dongs returns the distinct non-empty dong values of a gugun, sorted.
func (s *SQLiteStore) Dongs(ctx context.Context, gugun string) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT dong FROM auctions WHERE gugun = ? AND dong != '' ORDER BY dong`, gugun)
}

// IDsByCaseNo maps case numbers to listing ids. Unknown case numbers are
// skipped.
func (s *SQLiteStore) IDsByCaseNo(ctx context.Context, caseNos []string) ([]string, error) {
	if len(caseNos) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(caseNos))
	for _, c := range caseNos {
		args = append(args, c)
	}
	return s.distinct(ctx, `SELECT id FROM auctions WHERE case_no IN (`+placeholders(len(caseNos))+`) ORDER BY id`, args...)
}

func (s *SQLiteStore) distinct(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
