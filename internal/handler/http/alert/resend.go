package alert

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"shopalert/internal/domain/entity"
	"shopalert/internal/handler/http/pathutil"
	"shopalert/internal/handler/http/respond"
	"shopalert/internal/observability/logging"
	"shopalert/internal/usecase/dispatch"
)

type ResendHandler struct {
	Dispatch *dispatch.Service
	Logger   *slog.Logger
}

// ServeHTTP アラート再送
// @Summary      アラート再送
// @Description  指定されたアラートレコードを元のメッセージのまま再送します。レコードは PENDING に戻り、結果で SUCCESS/ERROR に遷移します。
// @Tags         alerts
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "アラートID (UUID)"
// @Success      200 {object} dispatchResponse "再送成功またはスキップ"
// @Failure      400 {string} string "Bad request - invalid alert ID"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      404 {string} string "Not found - alert not found"
// @Failure      502 {object} dispatchResponse "再送失敗（レコードはERRORのまま）"
// @Router       /alerts/{id}/resend [post]
func (h ResendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, ok := strings.CutSuffix(r.URL.Path, "/resend")
	if !ok {
		http.NotFound(w, r)
		return
	}

	id, err := pathutil.ExtractUUID(path, "/alerts/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	outcome, err := h.Dispatch.Resend(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			respond.SafeError(w, http.StatusNotFound, err)
			return
		}

		logger.Error("Alert resend failed",
			"alert_id", id,
			"error", err.Error())
		body := dispatchResponse{Status: "failed", Reason: "alert delivery failed"}
		if outcome.Record != nil {
			dto := toDTO(outcome.Record)
			body.Alert = &dto
		}
		respond.JSON(w, http.StatusBadGateway, body)
		return
	}

	switch outcome.Kind {
	case dispatch.OutcomeSkipped:
		respond.JSON(w, http.StatusOK, dispatchResponse{
			Status: "skipped",
			Reason: outcome.Reason,
		})
	default:
		dto := toDTO(outcome.Record)
		respond.JSON(w, http.StatusOK, dispatchResponse{
			Status: "sent",
			Alert:  &dto,
		})
	}
}
