package alert

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"shopalert/internal/common/pagination"
	"shopalert/internal/handler/http/requestid"
	"shopalert/internal/handler/http/respond"
	"shopalert/internal/observability/logging"
	"shopalert/internal/usecase/alertlog"
)

var errMissingShopID = errors.New("shop_id query parameter is required")

type ListHandler struct {
	Log           *alertlog.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP アラート履歴取得
// @Summary      アラート履歴取得（ページネーション対応）
// @Description  指定ショップのアラートレコードを新しい順に取得します。
// @Tags         alerts
// @Security     BearerAuth
// @Produce      json
// @Param        shop_id query    string true  "ショップID (myshopify ドメイン)"
// @Param        page    query    int    false "ページ番号 (1-based)" default(1) minimum(1)
// @Param        limit   query    int    false "1ページあたりの件数" default(20) minimum(1) maximum(100)
// @Success      200 {object} pagination.Response[DTO] "ページネーション付きアラート一覧"
// @Failure      400 {string} string "Invalid query parameters"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /alerts [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	reqID := requestid.FromContext(ctx)
	logger := logging.WithRequestID(ctx, h.Logger)

	shopID := strings.TrimSpace(r.URL.Query().Get("shop_id"))
	if shopID == "" {
		respond.SafeError(w, http.StatusBadRequest, errMissingShopID)
		return
	}

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		logger.Warn("Invalid pagination parameters",
			"error", err.Error(),
			"request_id", reqID)
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Log.ListByShop(ctx, shopID, params)
	if err != nil {
		logger.Error("Failed to list alerts",
			"error", err.Error(),
			"shop_id", shopID,
			"page", params.Page,
			"limit", params.Limit,
			"request_id", reqID)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(result.Data))
	for _, record := range result.Data {
		dtos = append(dtos, toDTO(record))
	}

	response := pagination.NewResponse(dtos, result.Pagination)

	logger.Info("Alert list response",
		"shop_id", shopID,
		"page", params.Page,
		"limit", params.Limit,
		"returned_count", len(dtos),
		"duration_ms", time.Since(startTime).Milliseconds(),
		"request_id", reqID)

	respond.JSON(w, http.StatusOK, response)
}
