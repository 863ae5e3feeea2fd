package alert

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"shopalert/internal/domain/entity"
	"shopalert/internal/handler/http/respond"
	"shopalert/internal/observability/logging"
	"shopalert/internal/usecase/dispatch"
	"shopalert/internal/usecase/template"
)

type CreateHandler struct {
	Dispatch *dispatch.Service
	Logger   *slog.Logger
}

type createRequest struct {
	ShopID    string         `json:"shop_id"`
	EventType string         `json:"event_type"`
	Message   string         `json:"message"`
	Context   requestContext `json:"context"`
}

type requestContext struct {
	ShopName       string            `json:"shop_name"`
	ProductTitle   string            `json:"product_title"`
	ProductURL     string            `json:"product_url"`
	OrderID        string            `json:"order_id"`
	CustomerName   string            `json:"customer_name"`
	ErrorMessage   string            `json:"error_message"`
	AdditionalInfo map[string]string `json:"additional_info"`
}

func (c requestContext) toTemplate() template.Context {
	return template.Context{
		ShopName:       c.ShopName,
		ProductTitle:   c.ProductTitle,
		ProductURL:     c.ProductURL,
		OrderID:        c.OrderID,
		CustomerName:   c.CustomerName,
		ErrorMessage:   c.ErrorMessage,
		AdditionalInfo: c.AdditionalInfo,
	}
}

// dispatchResponse is the JSON body for manual create and resend. The failed
// variant still carries the terminal record so operators can resend by id.
type dispatchResponse struct {
	Status string `json:"status"` // "sent", "skipped" or "failed"
	Reason string `json:"reason,omitempty"`
	Alert  *DTO   `json:"alert,omitempty"`
}

// ServeHTTP 手動アラート送信
// @Summary      手動アラート送信
// @Description  指定ショップにアラートを手動送信します。message を省略するとイベント種別のテンプレートから本文を生成します。
// @Tags         alerts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        alert body createRequest true "送信内容"
// @Success      201 {object} dispatchResponse "送信成功"
// @Success      200 {object} dispatchResponse "設定によりスキップ"
// @Failure      400 {string} string "Bad request - invalid body or event type"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      502 {object} dispatchResponse "配信失敗（レコードはERRORで保存済み）"
// @Router       /alerts [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeErrorV2(w, http.StatusBadRequest,
			respond.NewAppError(http.StatusBadRequest, "invalid request body", err))
		return
	}

	req.ShopID = strings.TrimSpace(req.ShopID)
	if req.ShopID == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("shop_id is required"))
		return
	}

	eventType := entity.EventTypeFromTopic(req.EventType)
	if !eventType.Known() {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid event_type"))
		return
	}

	outcome, err := h.Dispatch.Send(ctx, dispatch.SendInput{
		ShopID:    req.ShopID,
		EventType: eventType,
		Message:   req.Message,
		Context:   req.Context.toTemplate(),
	})
	if err != nil {
		logger.Error("Manual alert dispatch failed",
			"shop_id", req.ShopID,
			"event_type", eventType.String(),
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
		respond.JSON(w, http.StatusCreated, dispatchResponse{
			Status: "sent",
			Alert:  &dto,
		})
	}
}
