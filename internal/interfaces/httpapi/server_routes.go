package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/sports/{sport}/leagues", handler.ListLeaguesBySport)
	mux.HandleFunc("GET /v1/sports/{sport}/leagues/{leagueID}/games", handler.ListGamesByLeague)
	mux.HandleFunc("GET /v1/sports/{sport}/leagues/{leagueID}/status", handler.GetLeagueStatus)
	mux.HandleFunc("GET /v1/cycles", handler.ListCycles)
	mux.HandleFunc("GET /v1/cycles/latest", handler.GetLatestCycle)
	mux.HandleFunc("GET /v1/stats", handler.GetPipelineStats)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/run-cycle", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunFetchCycleJob)))
	mux.Handle("POST /v1/internal/jobs/refresh-catalog", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RefreshCatalogJob)))
}
