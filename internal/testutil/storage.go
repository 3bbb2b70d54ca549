// Package testutil provides in-memory fakes for service tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fundwatch/fundwatch/internal/interfaces"
	"github.com/fundwatch/fundwatch/internal/models"
)

// MemoryStorage is an in-memory StorageManager for tests.
type MemoryStorage struct {
	mu         sync.Mutex
	funds      map[string]models.Fund
	holdings   map[string]models.FundHoldings
	portfolios map[string]models.Portfolio
	snapshots  map[string]models.PortfolioSnapshot
	estimates  map[string]models.EstimateSnapshot
}

// NewMemoryStorage creates an empty in-memory storage manager.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		funds:      make(map[string]models.Fund),
		holdings:   make(map[string]models.FundHoldings),
		portfolios: make(map[string]models.Portfolio),
		snapshots:  make(map[string]models.PortfolioSnapshot),
		estimates:  make(map[string]models.EstimateSnapshot),
	}
}

func (m *MemoryStorage) FundStore() interfaces.FundStore           { return (*memFundStore)(m) }
func (m *MemoryStorage) PortfolioStore() interfaces.PortfolioStore { return (*memPortfolioStore)(m) }
func (m *MemoryStorage) SnapshotStore() interfaces.SnapshotStore   { return (*memSnapshotStore)(m) }
func (m *MemoryStorage) EstimateSnapshotStore() interfaces.EstimateSnapshotStore {
	return (*memEstimateStore)(m)
}
func (m *MemoryStorage) Close() error { return nil }

type memFundStore MemoryStorage

func (s *memFundStore) GetFund(_ context.Context, fundCode string) (*models.Fund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fund, ok := s.funds[fundCode]
	if !ok {
		return nil, fmt.Errorf("fund '%s': %w", fundCode, interfaces.ErrNotFound)
	}
	return &fund, nil
}

func (s *memFundStore) SaveFund(_ context.Context, fund *models.Fund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fund.UpdatedAt = time.Now()
	s.funds[fund.FundCode] = *fund
	return nil
}

func (s *memFundStore) ListFunds(_ context.Context) ([]*models.Fund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	funds := make([]*models.Fund, 0, len(s.funds))
	for code := range s.funds {
		fund := s.funds[code]
		funds = append(funds, &fund)
	}
	sort.Slice(funds, func(i, j int) bool { return funds[i].FundCode < funds[j].FundCode })
	return funds, nil
}

func (s *memFundStore) DeleteFund(_ context.Context, fundCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.funds, fundCode)
	delete(s.holdings, fundCode)
	return nil
}

func (s *memFundStore) UpdateNAV(ctx context.Context, fundCode string, nav float64, navDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fund, ok := s.funds[fundCode]
	if !ok {
		return fmt.Errorf("fund '%s': %w", fundCode, interfaces.ErrNotFound)
	}
	fund.LastNAV = nav
	fund.NAVDate = navDate
	fund.UpdatedAt = time.Now()
	s.funds[fundCode] = fund
	return nil
}

func (s *memFundStore) GetHoldings(_ context.Context, fundCode string) (*models.FundHoldings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	holdings, ok := s.holdings[fundCode]
	if !ok {
		return nil, fmt.Errorf("holdings for fund '%s': %w", fundCode, interfaces.ErrNotFound)
	}
	return &holdings, nil
}

func (s *memFundStore) ReplaceHoldings(_ context.Context, holdings *models.FundHoldings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	holdings.UpdatedAt = time.Now()
	s.holdings[holdings.FundCode] = *holdings
	return nil
}

type memPortfolioStore MemoryStorage

func (s *memPortfolioStore) GetPortfolio(_ context.Context, id string) (*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	portfolio, ok := s.portfolios[id]
	if !ok {
		return nil, fmt.Errorf("portfolio '%s': %w", id, interfaces.ErrNotFound)
	}
	return &portfolio, nil
}

func (s *memPortfolioStore) SavePortfolio(_ context.Context, portfolio *models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	portfolio.UpdatedAt = time.Now()
	if portfolio.CreatedAt.IsZero() {
		portfolio.CreatedAt = time.Now()
	}
	s.portfolios[portfolio.ID] = *portfolio
	return nil
}

func (s *memPortfolioStore) ListPortfolios(_ context.Context) ([]*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	portfolios := make([]*models.Portfolio, 0, len(s.portfolios))
	for id := range s.portfolios {
		portfolio := s.portfolios[id]
		portfolios = append(portfolios, &portfolio)
	}
	sort.Slice(portfolios, func(i, j int) bool { return portfolios[i].ID < portfolios[j].ID })
	return portfolios, nil
}

func (s *memPortfolioStore) DeletePortfolio(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.portfolios, id)
	return nil
}

type memSnapshotStore MemoryStorage

func (s *memSnapshotStore) Upsert(_ context.Context, snapshot *models.PortfolioSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot.Key = models.SnapshotKey(snapshot.PortfolioID, snapshot.Date)
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now()
	}
	s.snapshots[snapshot.Key] = *snapshot
	return nil
}

func (s *memSnapshotStore) List(_ context.Context, portfolioID, since string) ([]*models.PortfolioSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var snapshots []*models.PortfolioSnapshot
	for key := range s.snapshots {
		snapshot := s.snapshots[key]
		if snapshot.PortfolioID != portfolioID {
			continue
		}
		if since != "" && snapshot.Date < since {
			continue
		}
		snapshots = append(snapshots, &snapshot)
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Date < snapshots[j].Date })
	return snapshots, nil
}

func (s *memSnapshotStore) DeleteByPortfolio(_ context.Context, portfolioID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, snapshot := range s.snapshots {
		if snapshot.PortfolioID == portfolioID {
			delete(s.snapshots, key)
			deleted++
		}
	}
	return deleted, nil
}

type memEstimateStore MemoryStorage

func (s *memEstimateStore) Upsert(_ context.Context, snapshot *models.EstimateSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot.Key = models.EstimateSnapshotKey(snapshot.FundCode, snapshot.Date, snapshot.Time)
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now()
	}
	s.estimates[snapshot.Key] = *snapshot
	return nil
}

func (s *memEstimateStore) ListByDate(_ context.Context, fundCode, date string) ([]*models.EstimateSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var snapshots []*models.EstimateSnapshot
	for key := range s.estimates {
		snapshot := s.estimates[key]
		if snapshot.FundCode != fundCode || snapshot.Date != date {
			continue
		}
		snapshots = append(snapshots, &snapshot)
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Time < snapshots[j].Time })
	return snapshots, nil
}

func (s *memEstimateStore) DeleteBefore(_ context.Context, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, snapshot := range s.estimates {
		if snapshot.Date < date {
			delete(s.estimates, key)
			deleted++
		}
	}
	return deleted, nil
}

var _ interfaces.StorageManager = (*MemoryStorage)(nil)
