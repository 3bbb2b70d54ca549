// Package storage provides the top-level StorageManager that coordinates the
// BadgerHold-backed stores.
package storage

import (
	"fmt"

	"github.com/fundwatch/fundwatch/internal/common"
	"github.com/fundwatch/fundwatch/internal/interfaces"
	"github.com/fundwatch/fundwatch/internal/storage/badger"
)

// Manager implements interfaces.StorageManager over a single BadgerHold
// database.
type Manager struct {
	store      *badger.Store
	funds      interfaces.FundStore
	portfolios interfaces.PortfolioStore
	snapshots  interfaces.SnapshotStore
	estimates  interfaces.EstimateSnapshotStore
	logger     *common.Logger
}

// NewManager opens the BadgerHold database and wires the per-entity stores.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	logger.Info().
		Str("path", config.Storage.Path).
		Msg("Storage manager initialized")

	return &Manager{
		store:      store,
		funds:      badger.NewFundStore(store, logger),
		portfolios: badger.NewPortfolioStore(store, logger),
		snapshots:  badger.NewSnapshotStore(store, logger),
		estimates:  badger.NewEstimateSnapshotStore(store, logger),
		logger:     logger,
	}, nil
}

func (m *Manager) FundStore() interfaces.FundStore {
	return m.funds
}

func (m *Manager) PortfolioStore() interfaces.PortfolioStore {
	return m.portfolios
}

func (m *Manager) SnapshotStore() interfaces.SnapshotStore {
	return m.snapshots
}

func (m *Manager) EstimateSnapshotStore() interfaces.EstimateSnapshotStore {
	return m.estimates
}

func (m *Manager) Close() error {
	return m.store.Close()
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
