package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fundwatch/fundwatch/internal/common"
)

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// --- Fund handlers ---

// handleFundSearch handles GET /api/funds/search?q=&limit=
func (s *Server) handleFundSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		WriteError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := s.app.FundService.Search(r.Context(), query, limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
	})
}

// handleFundGet handles GET /api/funds/{code}
func (s *Server) handleFundGet(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	fund, err := s.app.FundService.GetFund(r.Context(), code)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	now := time.Now()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"fund":      fund,
		"nav_stale": common.NAVStale(fund.NAVDate, now),
	})
}

// handleFundHoldings handles GET /api/funds/{code}/holdings
func (s *Server) handleFundHoldings(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	holdings, err := s.app.FundService.GetHoldings(r.Context(), code)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"fund_code":      holdings.FundCode,
		"report_date":    holdings.ReportDate,
		"holdings":       holdings.Holdings,
		"holdings_stale": common.HoldingsStale(holdings.ReportDate, time.Now()),
	})
}

// handleFundEstimate handles GET /api/funds/{code}/estimate
func (s *Server) handleFundEstimate(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	estimate, err := s.app.FundService.GetEstimate(r.Context(), code)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, estimate)
}

// handleFundNAVHistory handles GET /api/funds/{code}/nav-history?period=
func (s *Server) handleFundNAVHistory(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	history, err := s.app.FundService.NAVHistory(r.Context(), code, r.URL.Query().Get("period"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, history)
}

// handleFundIntraday handles GET /api/funds/{code}/intraday
func (s *Server) handleFundIntraday(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	intraday, err := s.app.FundService.Intraday(r.Context(), code)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, intraday)
}

// handleFundSetup handles POST /api/funds/{code}/setup
func (s *Server) handleFundSetup(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	fund, err := s.app.FundService.SetupFund(r.Context(), code)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, fund)
}

// handleFundRefreshNAV handles POST /api/funds/{code}/refresh-nav
func (s *Server) handleFundRefreshNAV(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	fund, err := s.app.FundService.RefreshNAV(r.Context(), code)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, fund)
}
