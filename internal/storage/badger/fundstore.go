package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/fundwatch/fundwatch/internal/common"
	"github.com/fundwatch/fundwatch/internal/interfaces"
	"github.com/fundwatch/fundwatch/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type fundStore struct {
	store  *Store
	logger *common.Logger
}

// NewFundStore creates a FundStore backed by BadgerHold.
func NewFundStore(store *Store, logger *common.Logger) *fundStore {
	return &fundStore{store: store, logger: logger}
}

func (s *fundStore) GetFund(_ context.Context, fundCode string) (*models.Fund, error) {
	var fund models.Fund
	err := s.store.db.Get(fundCode, &fund)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("fund '%s': %w", fundCode, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get fund '%s': %w", fundCode, err)
	}
	return &fund, nil
}

func (s *fundStore) SaveFund(_ context.Context, fund *models.Fund) error {
	fund.UpdatedAt = time.Now()
	if err := s.store.db.Upsert(fund.FundCode, fund); err != nil {
		return fmt.Errorf("failed to save fund '%s': %w", fund.FundCode, err)
	}
	s.logger.Debug().Str("fund", fund.FundCode).Msg("Fund saved")
	return nil
}

func (s *fundStore) ListFunds(_ context.Context) ([]*models.Fund, error) {
	var funds []*models.Fund
	if err := s.store.db.Find(&funds, nil); err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	return funds, nil
}

func (s *fundStore) DeleteFund(ctx context.Context, fundCode string) error {
	err := s.store.db.Delete(fundCode, models.Fund{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete fund '%s': %w", fundCode, err)
	}
	// Holdings live under the same key; remove them with the fund.
	err = s.store.db.Delete(fundCode, models.FundHoldings{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete holdings for '%s': %w", fundCode, err)
	}
	s.logger.Debug().Str("fund", fundCode).Msg("Fund deleted")
	return nil
}

func (s *fundStore) UpdateNAV(ctx context.Context, fundCode string, nav float64, navDate string) error {
	fund, err := s.GetFund(ctx, fundCode)
	if err != nil {
		return err
	}
	fund.LastNAV = nav
	fund.NAVDate = navDate
	return s.SaveFund(ctx, fund)
}

func (s *fundStore) GetHoldings(_ context.Context, fundCode string) (*models.FundHoldings, error) {
	var holdings models.FundHoldings
	err := s.store.db.Get(fundCode, &holdings)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("holdings for fund '%s': %w", fundCode, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get holdings for '%s': %w", fundCode, err)
	}
	return &holdings, nil
}

func (s *fundStore) ReplaceHoldings(_ context.Context, holdings *models.FundHoldings) error {
	holdings.UpdatedAt = time.Now()
	if err := s.store.db.Upsert(holdings.FundCode, holdings); err != nil {
		return fmt.Errorf("failed to replace holdings for '%s': %w", holdings.FundCode, err)
	}
	s.logger.Debug().
		Str("fund", holdings.FundCode).
		Str("report_date", holdings.ReportDate).
		Int("holdings", len(holdings.Holdings)).
		Msg("Holdings replaced")
	return nil
}

// Ensure fundStore implements FundStore
var _ interfaces.FundStore = (*fundStore)(nil)
