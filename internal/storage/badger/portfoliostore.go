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

type portfolioStore struct {
	store  *Store
	logger *common.Logger
}

// NewPortfolioStore creates a PortfolioStore backed by BadgerHold.
func NewPortfolioStore(store *Store, logger *common.Logger) *portfolioStore {
	return &portfolioStore{store: store, logger: logger}
}

func (s *portfolioStore) GetPortfolio(_ context.Context, id string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := s.store.db.Get(id, &portfolio)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("portfolio '%s': %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get portfolio '%s': %w", id, err)
	}
	return &portfolio, nil
}

func (s *portfolioStore) SavePortfolio(_ context.Context, portfolio *models.Portfolio) error {
	portfolio.UpdatedAt = time.Now()
	if portfolio.CreatedAt.IsZero() {
		portfolio.CreatedAt = time.Now()
	}

	if err := s.store.db.Upsert(portfolio.ID, portfolio); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	s.logger.Debug().Str("id", portfolio.ID).Str("name", portfolio.Name).Msg("Portfolio saved")
	return nil
}

func (s *portfolioStore) ListPortfolios(_ context.Context) ([]*models.Portfolio, error) {
	var portfolios []*models.Portfolio
	if err := s.store.db.Find(&portfolios, nil); err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	return portfolios, nil
}

func (s *portfolioStore) DeletePortfolio(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Portfolio{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete portfolio '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Portfolio deleted")
	return nil
}

// Ensure portfolioStore implements PortfolioStore
var _ interfaces.PortfolioStore = (*portfolioStore)(nil)
