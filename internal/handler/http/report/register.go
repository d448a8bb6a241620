package report

import "net/http"

// Register adds the report routes to mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("GET /api/report", GetHandler{Svc: svc})
	mux.Handle("GET /api/reports/history", HistoryHandler{Svc: svc})
}
