package fund

import (
	"context"
	"fmt"
	"time"

	"github.com/fundwatch/fundwatch/internal/common"
	"github.com/fundwatch/fundwatch/internal/interfaces"
	"github.com/fundwatch/fundwatch/internal/models"
)

const intradayTimeLayout = "15:04"

// NAVHistory returns the fund's published NAV series for chart display,
// oldest first, clipped to the period window. A provider failure degrades to
// an empty series so charts render without data instead of erroring.
func (s *Service) NAVHistory(ctx context.Context, fundCode, period string) (*models.FundNAVHistory, error) {
	if _, err := s.GetFund(ctx, fundCode); err != nil {
		return nil, err
	}

	count, cutoff, err := s.historyWindow(period)
	if err != nil {
		return nil, err
	}

	history := &models.FundNAVHistory{
		FundCode: fundCode,
		Dates:    []string{},
		NAVs:     []float64{},
	}

	points, err := s.client.GetFundNAVHistory(ctx, fundCode, count)
	if err != nil {
		s.logger.Warn().Err(err).Str("fund", fundCode).Msg("NAV history unavailable")
		return history, nil
	}

	// Provider serves newest first; reverse while clipping to the window.
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Date < cutoff {
			continue
		}
		history.Dates = append(history.Dates, points[i].Date)
		history.NAVs = append(history.NAVs, points[i].NAV)
	}
	return history, nil
}

// historyWindow maps a period name to a provider fetch size and the
// inclusive window start. Fetch sizes carry slack for weekends and holidays;
// the cutoff does the exact clipping.
func (s *Service) historyWindow(period string) (int, string, error) {
	now := s.now()
	switch period {
	case "", "30d":
		return 45, now.AddDate(0, 0, -30).Format(common.DateLayout), nil
	case "7d":
		return 12, now.AddDate(0, 0, -7).Format(common.DateLayout), nil
	case "ytd":
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		count := int(now.Sub(start).Hours()/24) + 5
		return count, start.Format(common.DateLayout), nil
	case "1y":
		return 400, now.AddDate(-1, 0, 0).Format(common.DateLayout), nil
	case "3y":
		return 1125, now.AddDate(-3, 0, 0).Format(common.DateLayout), nil
	default:
		return 0, "", fmt.Errorf("invalid period '%s': %w", period, interfaces.ErrInvalidInput)
	}
}

// Intraday returns today's captured estimate samples for the fund, oldest
// first, with the last published NAV as the chart baseline.
func (s *Service) Intraday(ctx context.Context, fundCode string) (*models.FundIntraday, error) {
	fund, err := s.GetFund(ctx, fundCode)
	if err != nil {
		return nil, err
	}

	date := s.now().Format(common.DateLayout)
	snapshots, err := s.storage.EstimateSnapshotStore().ListByDate(ctx, fundCode, date)
	if err != nil {
		return nil, err
	}

	intraday := &models.FundIntraday{
		FundCode: fundCode,
		Date:     date,
		LastNAV:  fund.LastNAV,
		Times:    make([]string, 0, len(snapshots)),
		NAVs:     make([]float64, 0, len(snapshots)),
	}
	for _, snapshot := range snapshots {
		intraday.Times = append(intraday.Times, snapshot.Time)
		intraday.NAVs = append(intraday.NAVs, snapshot.EstNAV)
	}
	return intraday, nil
}

// RecordEstimate samples the fund's current estimate into the intraday
// series, one sample per minute. Degraded estimates are skipped: a flat
// last-NAV line carries no information.
func (s *Service) RecordEstimate(ctx context.Context, fundCode string) error {
	estimate, err := s.GetEstimate(ctx, fundCode)
	if err != nil {
		return err
	}
	if estimate.Degraded {
		return nil
	}

	now := s.now()
	return s.storage.EstimateSnapshotStore().Upsert(ctx, &models.EstimateSnapshot{
		FundCode:     fundCode,
		Date:         now.Format(common.DateLayout),
		Time:         now.Format(intradayTimeLayout),
		EstNAV:       estimate.EstNAV,
		EstChangePct: estimate.EstChangePct,
	})
}
