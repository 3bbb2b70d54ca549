package server

import (
	"net/http"
	"strings"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Funds
	mux.HandleFunc("/api/funds/search", s.handleFundSearch)
	mux.HandleFunc("/api/funds/", s.routeFunds)

	// Portfolios
	mux.HandleFunc("/api/portfolios/", s.routePortfolios)
	mux.HandleFunc("/api/portfolios", s.handlePortfolios)
}

// routeFunds dispatches /api/funds/{code}[/...] to the appropriate handler.
func (s *Server) routeFunds(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/funds/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "fund code is required in path")
		return
	}

	code, rest, _ := strings.Cut(path, "/")
	switch rest {
	case "":
		s.handleFundGet(w, r, code)
	case "holdings":
		s.handleFundHoldings(w, r, code)
	case "estimate":
		s.handleFundEstimate(w, r, code)
	case "nav-history":
		s.handleFundNAVHistory(w, r, code)
	case "intraday":
		s.handleFundIntraday(w, r, code)
	case "setup":
		s.handleFundSetup(w, r, code)
	case "refresh-nav":
		s.handleFundRefreshNAV(w, r, code)
	default:
		WriteError(w, http.StatusNotFound, "Unknown fund endpoint")
	}
}

// routePortfolios dispatches /api/portfolios/{id}[/...] to the appropriate handler.
func (s *Server) routePortfolios(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/portfolios/")
	if path == "" {
		s.handlePortfolios(w, r)
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	switch {
	case rest == "":
		s.handlePortfolio(w, r, id)
	case rest == "combined":
		s.handlePortfolioCombined(w, r, id)
	case rest == "history":
		s.handlePortfolioHistory(w, r, id)
	case rest == "snapshot":
		s.handlePortfolioSnapshot(w, r, id)
	case rest == "funds":
		s.handlePortfolioFundAdd(w, r, id)
	case strings.HasPrefix(rest, "funds/"):
		s.handlePortfolioFundRemove(w, r, id, strings.TrimPrefix(rest, "funds/"))
	default:
		WriteError(w, http.StatusNotFound, "Unknown portfolio endpoint")
	}
}
