package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/seogyeonga/auction-radar/internal/domain"
	"github.com/seogyeonga/auction-radar/internal/storage"
)

type recordingInvalidator struct {
	ids []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, ids ...string) error {
	r.ids = append(r.ids, ids...)
	return nil
}

func openStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	s, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "auctions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func TestReassessJobFixesStaleTags(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	current, err := store.Create(ctx, domain.Listing{
		Court: "c", CaseNo: "1", Address: "서울 강남구", AuctionRound: 1,
		RiskLevel: domain.RiskSafe, RiskReason: "권리관계 단순",
	})
	require.NoError(t, err)
	wrong, err := store.Create(ctx, domain.Listing{
		Court: "c", CaseNo: "2", Address: "서울 마포구", AuctionRound: 1, Remarks: "유치권 신고",
		RiskLevel: domain.RiskSafe, RiskReason: "권리관계 단순",
	})
	require.NoError(t, err)
	untagged, err := store.Create(ctx, domain.Listing{
		Court: "c", CaseNo: "3", Address: "서울 노원구", AuctionRound: 3,
	})
	require.NoError(t, err)

	inv := &recordingInvalidator{}
	job := NewReassessJob(store, inv, zaptest.NewLogger(t))
	require.NoError(t, New(ctx, zaptest.NewLogger(t)).RunNow(job))

	got, _, err := store.Get(ctx, wrong.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskDanger, got.RiskLevel)
	assert.Equal(t, "유치권", got.RiskReason)

	got, _, err = store.Get(ctx, untagged.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskCaution, got.RiskLevel)
	assert.Equal(t, "3차 유찰 (원인 확인 필요)", got.RiskReason)

	assert.ElementsMatch(t, []string{wrong.ID, untagged.ID}, inv.ids)
	assert.NotContains(t, inv.ids, current.ID)

	// second run has nothing to fix
	inv.ids = nil
	require.NoError(t, job.Run(ctx))
	assert.Empty(t, inv.ids)
}

func TestReassessJobPages(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	items := make([]domain.Listing, 0, reassessPageSize+5)
	for i := 0; i < reassessPageSize+5; i++ {
		items = append(items, domain.Listing{Court: "c", CaseNo: fmt.Sprintf("case-%03d", i), Address: "서울", AuctionRound: 2})
	}
	_, err := store.UpsertMany(ctx, items)
	require.NoError(t, err)

	job := NewReassessJob(store, nil, zaptest.NewLogger(t))
	checked, updated, err := job.run(ctx)
	require.NoError(t, err)
	assert.Equal(t, reassessPageSize+5, checked)
	assert.Equal(t, reassessPageSize+5, updated)
}

type failingStore struct{}

func (failingStore) List(context.Context, storage.ListFilter) ([]domain.Listing, int, error) {
	return nil, 0, errors.New("db down")
}

func (failingStore) UpdateRisk(context.Context, string, domain.RiskAssessment) error { return nil }

func TestReassessJobPropagatesStoreErrors(t *testing.T) {
	job := NewReassessJob(failingStore{}, nil, zaptest.NewLogger(t))
	err := job.Run(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestReassessJobStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := NewReassessJob(openStore(t), nil, zaptest.NewLogger(t))
	assert.ErrorIs(t, job.Run(ctx), context.Canceled)
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(context.Background(), zaptest.NewLogger(t))
	job := NewReassessJob(failingStore{}, nil, zaptest.NewLogger(t))

	assert.Error(t, s.AddJob("not a schedule", job))
	require.NoError(t, s.AddJob("0 0 6,18 * * *", job))
	s.Start()
	s.Stop()
}
