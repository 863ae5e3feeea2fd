package alert

import (
	"errors"
	"net/http"

	"shopalert/internal/domain/entity"
	"shopalert/internal/handler/http/pathutil"
	"shopalert/internal/handler/http/respond"
	"shopalert/internal/usecase/alertlog"
)

type GetHandler struct{ Log *alertlog.Service }

// ServeHTTP アラート詳細取得
// @Summary      アラート詳細取得
// @Description  指定されたIDのアラートレコードを取得します
// @Tags         alerts
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "アラートID (UUID)"
// @Success      200 {object} DTO "アラート詳細"
// @Failure      400 {string} string "Bad request - invalid alert ID"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      404 {string} string "Not found - alert not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /alerts/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractUUID(r.URL.Path, "/alerts/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	record, err := h.Log.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(record))
}
