package report

import (
	"net/http"
	"strings"

	"tickermate/internal/handler/http/respond"
)

// HistoryHandler serves GET /api/reports/history.
type HistoryHandler struct{ Svc Service }

// ServeHTTP lists archived reports for a ticker, newest first.
// @Summary      Report history
// @Description  Archived reports for a ticker, newest first. Requires DATABASE_URL.
// @Tags         reports
// @Produce      json
// @Param        ticker query string true  "Ticker symbol"
// @Param        limit  query int    false "Maximum entries, 1-100" default(20)
// @Success      200 {object} HistoryDTO
// @Failure      400 {object} respond.ErrorResponse "Invalid ticker or limit"
// @Failure      404 {object} respond.ErrorResponse "History is not enabled"
// @Failure      500 {object} respond.ErrorResponse "Internal error"
// @Router       /api/reports/history [get]
func (h HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	entries, err := h.Svc.History(r.Context(), q.Get("ticker"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := HistoryDTO{
		Ticker:  strings.ToUpper(strings.TrimSpace(q.Get("ticker"))),
		Reports: make([]HistoryEntryDTO, 0, len(entries)),
	}
	for _, e := range entries {
		out.Reports = append(out.Reports, HistoryEntryDTO{ID: e.ID, Report: toDTO(e.Report)})
	}
	respond.JSON(w, http.StatusOK, out)
}
