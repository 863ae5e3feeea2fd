// Package webhook provides the HTTP intake for shop event webhooks.
// Delivery runs synchronously on the request, but its result never reaches
// the sender: once the event triple parses, the endpoint acknowledges with
// 200 so the platform does not retry events we have already recorded.
package webhook

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"shopalert/internal/handler/http/respond"
	"shopalert/internal/observability/logging"
	"shopalert/internal/usecase/dispatch"
)

type Handler struct {
	Dispatch *dispatch.Service
	Logger   *slog.Logger
}

type eventRequest struct {
	ShopID       string         `json:"shop_id"`
	ShopIDLegacy string         `json:"shopId"`
	Topic        string         `json:"topic"`
	Payload      map[string]any `json:"payload"`
}

// shopID prefers the snake_case field and falls back to the legacy camelCase
// one still sent by older app versions.
func (e eventRequest) shopID() string {
	if id := strings.TrimSpace(e.ShopID); id != "" {
		return id
	}
	return strings.TrimSpace(e.ShopIDLegacy)
}

// Register registers the webhook intake route with the given mux.
// The route is unauthenticated: the sender is the commerce platform, not an
// operator.
func Register(mux *http.ServeMux, dispatchSvc *dispatch.Service, logger *slog.Logger) {
	mux.Handle("POST /webhooks", Handler{Dispatch: dispatchSvc, Logger: logger})
}

// ServeHTTP Webhook受信
// @Summary      Webhook受信
// @Description  ショップイベントを受け付けてアラート配信を起動します。配信結果に関わらず、イベントが解析できれば 200 を返します。
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        event body eventRequest true "イベント"
// @Success      200 {object} map[string]string "受理"
// @Failure      400 {string} string "Bad request - malformed event"
// @Router       /webhooks [post]
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeErrorV2(w, http.StatusBadRequest,
			respond.NewAppError(http.StatusBadRequest, "invalid request body", err))
		return
	}

	shopID := req.shopID()
	if shopID == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("shop_id is required"))
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("topic is required"))
		return
	}

	outcome, err := h.Dispatch.HandleEvent(ctx, shopID, req.Topic, req.Payload)
	if err != nil {
		// 送信元には再試行させない
		logger.Error("Webhook dispatch failed",
			"shop_id", shopID,
			"topic", req.Topic,
			"error", err.Error())
	} else if outcome.Kind == dispatch.OutcomeSkipped {
		logger.Info("Webhook dispatch skipped",
			"shop_id", shopID,
			"topic", req.Topic,
			"reason", outcome.Reason)
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}
