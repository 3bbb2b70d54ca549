package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fundwatch/fundwatch/internal/common"
	"github.com/fundwatch/fundwatch/internal/interfaces"
	"github.com/fundwatch/fundwatch/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type snapshotStore struct {
	store  *Store
	logger *common.Logger
}

// NewSnapshotStore creates a SnapshotStore backed by BadgerHold.
func NewSnapshotStore(store *Store, logger *common.Logger) *snapshotStore {
	return &snapshotStore{store: store, logger: logger}
}

// Upsert writes the snapshot keyed by (portfolio, date), so a second run on
// the same day replaces the first record instead of duplicating it.
func (s *snapshotStore) Upsert(_ context.Context, snapshot *models.PortfolioSnapshot) error {
	snapshot.Key = models.SnapshotKey(snapshot.PortfolioID, snapshot.Date)
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now()
	}

	if err := s.store.db.Upsert(snapshot.Key, snapshot); err != nil {
		return fmt.Errorf("failed to upsert snapshot '%s': %w", snapshot.Key, err)
	}
	s.logger.Debug().
		Str("portfolio", snapshot.PortfolioID).
		Str("date", snapshot.Date).
		Float64("total_value", snapshot.TotalValue).
		Msg("Snapshot upserted")
	return nil
}

func (s *snapshotStore) List(_ context.Context, portfolioID, since string) ([]*models.PortfolioSnapshot, error) {
	query := badgerhold.Where("PortfolioID").Eq(portfolioID)
	if since != "" {
		query = query.And("Date").Ge(since)
	}

	var snapshots []*models.PortfolioSnapshot
	if err := s.store.db.Find(&snapshots, query); err != nil {
		return nil, fmt.Errorf("failed to list snapshots for '%s': %w", portfolioID, err)
	}

	// Dates are ISO strings, so lexicographic order is chronological.
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Date < snapshots[j].Date
	})
	return snapshots, nil
}

func (s *snapshotStore) DeleteByPortfolio(ctx context.Context, portfolioID string) (int, error) {
	snapshots, err := s.List(ctx, portfolioID, "")
	if err != nil {
		return 0, err
	}
	for _, snap := range snapshots {
		if err := s.store.db.Delete(snap.Key, models.PortfolioSnapshot{}); err != nil && err != badgerhold.ErrNotFound {
			return 0, fmt.Errorf("failed to delete snapshot '%s': %w", snap.Key, err)
		}
	}
	return len(snapshots), nil
}

// Ensure snapshotStore implements SnapshotStore
var _ interfaces.SnapshotStore = (*snapshotStore)(nil)
