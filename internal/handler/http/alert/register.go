package alert

import (
	"log/slog"
	"net/http"

	"shopalert/internal/common/pagination"
	"shopalert/internal/handler/http/auth"
	"shopalert/internal/usecase/alertlog"
	"shopalert/internal/usecase/dispatch"
)

// Register registers all alert-related HTTP handlers with the given mux.
// It sets up routes for listing the alert log, looking up a single record,
// creating a manual alert, and resending a failed one. Every route requires
// authentication via the auth middleware.
func Register(mux *http.ServeMux, dispatchSvc *dispatch.Service, logSvc *alertlog.Service, paginationCfg pagination.Config, logger *slog.Logger) {
	mux.Handle("GET  /alerts", auth.Authz(ListHandler{
		Log:           logSvc,
		PaginationCfg: paginationCfg,
		Logger:        logger,
	}))
	mux.Handle("GET  /alerts/", auth.Authz(GetHandler{Log: logSvc}))

	mux.Handle("POST /alerts", auth.Authz(CreateHandler{Dispatch: dispatchSvc, Logger: logger}))
	mux.Handle("POST /alerts/", auth.Authz(ResendHandler{Dispatch: dispatchSvc, Logger: logger}))
}
