package server

import (
	"net/http"
)

// --- Portfolio handlers ---

// handlePortfolios handles /api/portfolios: POST creates, GET lists.
func (s *Server) handlePortfolios(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		portfolios, err := s.app.PortfolioService.ListPortfolios(r.Context())
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"portfolios": portfolios})

	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		portfolio, err := s.app.PortfolioService.CreatePortfolio(r.Context(), req.Name)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, portfolio)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handlePortfolio handles /api/portfolios/{id}: GET detail, PATCH rename,
// DELETE removes the portfolio and its snapshots.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		detail, err := s.app.PortfolioService.GetDetail(r.Context(), id)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, detail)

	case http.MethodPatch:
		var req struct {
			Name string `json:"name"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		portfolio, err := s.app.PortfolioService.RenamePortfolio(r.Context(), id, req.Name)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, portfolio)

	case http.MethodDelete:
		if err := s.app.PortfolioService.DeletePortfolio(r.Context(), id); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

// handlePortfolioFundAdd handles POST /api/portfolios/{id}/funds
func (s *Server) handlePortfolioFundAdd(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		FundCode string  `json:"fund_code"`
		Shares   float64 `json:"shares"`
		CostNAV  float64 `json:"cost_nav"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.FundCode == "" {
		WriteError(w, http.StatusBadRequest, "fund_code is required")
		return
	}

	portfolio, err := s.app.PortfolioService.AddFund(r.Context(), id, req.FundCode, req.Shares, req.CostNAV)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, portfolio)
}

// handlePortfolioFundRemove handles DELETE /api/portfolios/{id}/funds/{code}
func (s *Server) handlePortfolioFundRemove(w http.ResponseWriter, r *http.Request, id, code string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	if code == "" {
		WriteError(w, http.StatusBadRequest, "fund code is required in path")
		return
	}

	portfolio, err := s.app.PortfolioService.RemoveFund(r.Context(), id, code)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, portfolio)
}

// handlePortfolioCombined handles GET /api/portfolios/{id}/combined
func (s *Server) handlePortfolioCombined(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	result, err := s.app.PortfolioService.GetCombinedHoldings(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// handlePortfolioHistory handles GET /api/portfolios/{id}/history?period=
func (s *Server) handlePortfolioHistory(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	history, err := s.app.PortfolioService.History(r.Context(), id, r.URL.Query().Get("period"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, history)
}

// handlePortfolioSnapshot handles POST /api/portfolios/{id}/snapshot
func (s *Server) handlePortfolioSnapshot(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	snapshot, err := s.app.PortfolioService.Snapshot(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, snapshot)
}
