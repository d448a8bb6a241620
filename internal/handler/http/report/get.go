package report

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"tickermate/internal/domain/entity"
	"tickermate/internal/handler/http/respond"
	"tickermate/internal/observability/logging"
	"tickermate/internal/repository"
	reportUC "tickermate/internal/usecase/report"
)

// Service is the report use case. *report.Reports implements it.
type Service interface {
	Get(ctx context.Context, req reportUC.Request) (*entity.Report, error)
	History(ctx context.Context, ticker string, limit int) ([]repository.ArchivedReport, error)
}

// GetHandler serves GET /api/report.
type GetHandler struct{ Svc Service }

// ServeHTTP builds or returns a cached report.
// @Summary      Ticker report
// @Description  Market snapshot plus summarized recent content for a ticker
// @Tags         reports
// @Produce      json
// @Param        ticker  query string true  "Ticker symbol, e.g. TSLA"
// @Param        channel query string false "social, news or stream" default(social)
// @Param        limit   query int    false "Content items, 1-20" default(4)
// @Success      200 {object} DTO
// @Failure      400 {object} respond.ErrorResponse "Invalid ticker, channel or limit"
// @Failure      429 {object} respond.ErrorResponse "Rate limit exceeded" headers(Retry-After=integer)
// @Failure      500 {object} respond.ErrorResponse "Internal error"
// @Failure      503 {object} respond.ErrorResponse "Classification is not configured"
// @Router       /api/report [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	ch, err := entity.ParseChannel(q.Get("channel"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	rep, err := h.Svc.Get(r.Context(), reportUC.Request{
		Ticker:  q.Get("ticker"),
		Channel: ch,
		Limit:   limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(rep))
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &entity.ValidationError{Field: "limit", Message: "limit must be an integer"}
	}
	if n < 1 {
		return 0, &entity.ValidationError{Field: "limit", Message: "limit must be positive"}
	}
	return n, nil
}

// writeError maps use case errors onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var cfgErr *entity.ConfigurationError
	switch {
	case errors.Is(err, entity.ErrInvalidInput):
		respond.Error(w, http.StatusBadRequest, err)
	case errors.As(err, &cfgErr):
		logging.FromContext(r.Context()).Error("report unavailable",
			slog.String("setting", cfgErr.Setting))
		respond.Message(w, http.StatusServiceUnavailable,
			"report classification is not configured: set "+cfgErr.Setting, nil)
	case errors.Is(err, reportUC.ErrHistoryDisabled), errors.Is(err, entity.ErrNotFound):
		respond.Error(w, http.StatusNotFound, err)
	case errors.Is(err, context.Canceled):
		// Client went away.
		return
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}
