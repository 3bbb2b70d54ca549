package portfolio

import (
	"context"
	"fmt"

	"github.com/fundwatch/fundwatch/internal/common"
	"github.com/fundwatch/fundwatch/internal/interfaces"
	"github.com/fundwatch/fundwatch/internal/models"
)

// Snapshot captures the portfolio's aggregate value for today. One record
// per portfolio per day; a rerun on the same day replaces the earlier record.
func (s *Service) Snapshot(ctx context.Context, id string) (*models.PortfolioSnapshot, error) {
	detail, err := s.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot := &models.PortfolioSnapshot{
		PortfolioID: id,
		Date:        s.now().Format(common.DateLayout),
		TotalValue:  detail.TotalEstimate,
		TotalCost:   detail.TotalCost,
	}
	if err := s.storage.SnapshotStore().Upsert(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// SnapshotAll captures today's snapshot for every portfolio. A failing
// portfolio is logged and skipped; the rest are still captured.
func (s *Service) SnapshotAll(ctx context.Context) (int, error) {
	portfolios, err := s.storage.PortfolioStore().ListPortfolios(ctx)
	if err != nil {
		return 0, err
	}

	captured := 0
	for _, portfolio := range portfolios {
		if _, err := s.Snapshot(ctx, portfolio.ID); err != nil {
			s.logger.Error().Err(err).Str("portfolio", portfolio.ID).Msg("Snapshot failed")
			continue
		}
		captured++
	}

	s.logger.Info().Int("captured", captured).Int("portfolios", len(portfolios)).Msg("Snapshots captured")
	return captured, nil
}

// History returns the portfolio's snapshot series for a period, oldest first,
// with profit percentages derived on read.
func (s *Service) History(ctx context.Context, id, period string) (*models.PortfolioHistory, error) {
	if _, err := s.storage.PortfolioStore().GetPortfolio(ctx, id); err != nil {
		return nil, err
	}

	since, err := s.periodStart(period)
	if err != nil {
		return nil, err
	}

	snapshots, err := s.storage.SnapshotStore().List(ctx, id, since)
	if err != nil {
		return nil, err
	}

	history := &models.PortfolioHistory{
		PortfolioID: id,
		Dates:       make([]string, 0, len(snapshots)),
		Values:      make([]float64, 0, len(snapshots)),
		Costs:       make([]float64, 0, len(snapshots)),
		ProfitPcts:  make([]float64, 0, len(snapshots)),
	}
	for _, snapshot := range snapshots {
		history.Dates = append(history.Dates, snapshot.Date)
		history.Values = append(history.Values, snapshot.TotalValue)
		history.Costs = append(history.Costs, snapshot.TotalCost)
		history.ProfitPcts = append(history.ProfitPcts, snapshot.ProfitPct())
	}
	return history, nil
}

// periodStart maps a period name to the inclusive start date of the window.
func (s *Service) periodStart(period string) (string, error) {
	now := s.now()
	switch period {
	case "", "30d":
		return now.AddDate(0, 0, -30).Format(common.DateLayout), nil
	case "7d":
		return now.AddDate(0, 0, -7).Format(common.DateLayout), nil
	case "1y":
		return now.AddDate(-1, 0, 0).Format(common.DateLayout), nil
	case "ytd":
		return fmt.Sprintf("%04d-01-01", now.Year()), nil
	default:
		return "", fmt.Errorf("invalid period '%s': %w", period, interfaces.ErrInvalidInput)
	}
}
