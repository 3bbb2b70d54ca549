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

type estimateSnapshotStore struct {
	store  *Store
	logger *common.Logger
}

// NewEstimateSnapshotStore creates an EstimateSnapshotStore backed by
// BadgerHold.
func NewEstimateSnapshotStore(store *Store, logger *common.Logger) *estimateSnapshotStore {
	return &estimateSnapshotStore{store: store, logger: logger}
}

// Upsert writes the sample keyed by (fund, date, time), so a second sample
// in the same minute replaces the first.
func (s *estimateSnapshotStore) Upsert(_ context.Context, snapshot *models.EstimateSnapshot) error {
	snapshot.Key = models.EstimateSnapshotKey(snapshot.FundCode, snapshot.Date, snapshot.Time)
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now()
	}

	if err := s.store.db.Upsert(snapshot.Key, snapshot); err != nil {
		return fmt.Errorf("failed to upsert estimate snapshot '%s': %w", snapshot.Key, err)
	}
	return nil
}

func (s *estimateSnapshotStore) ListByDate(_ context.Context, fundCode, date string) ([]*models.EstimateSnapshot, error) {
	query := badgerhold.Where("FundCode").Eq(fundCode).And("Date").Eq(date)

	var snapshots []*models.EstimateSnapshot
	if err := s.store.db.Find(&snapshots, query); err != nil {
		return nil, fmt.Errorf("failed to list estimate snapshots for '%s': %w", fundCode, err)
	}

	// "HH:MM" strings sort chronologically.
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Time < snapshots[j].Time
	})
	return snapshots, nil
}

func (s *estimateSnapshotStore) DeleteBefore(_ context.Context, date string) (int, error) {
	var snapshots []*models.EstimateSnapshot
	if err := s.store.db.Find(&snapshots, badgerhold.Where("Date").Lt(date)); err != nil {
		return 0, fmt.Errorf("failed to find estimate snapshots before '%s': %w", date, err)
	}
	for _, snap := range snapshots {
		if err := s.store.db.Delete(snap.Key, models.EstimateSnapshot{}); err != nil && err != badgerhold.ErrNotFound {
			return 0, fmt.Errorf("failed to delete estimate snapshot '%s': %w", snap.Key, err)
		}
	}
	return len(snapshots), nil
}

// Ensure estimateSnapshotStore implements EstimateSnapshotStore
var _ interfaces.EstimateSnapshotStore = (*estimateSnapshotStore)(nil)
