package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Marstach-svg/maple/internal/middleware"
	"github.com/Marstach-svg/maple/internal/model"
	"github.com/Marstach-svg/maple/internal/pin"
)

// groupIDHeader はピン作成時に対象グループを指定するリクエストヘッダー。
const groupIDHeader = "X-Group-Id"

// PinServiceInterface はピンハンドラーが必要とするサービスインターフェース。
type PinServiceInterface interface {
	// Create は指定グループにピンを作成する。
	Create(ctx context.Context, userID, groupID string, input pin.CreateInput) (*model.PinWithAuthor, error)
	// ListByGroup はグループのピン一覧を返す。
	ListByGroup(ctx context.Context, groupID string) ([]*model.PinWithAuthor, error)
	// Get はピンを取得する。
	Get(ctx context.Context, userID, pinID string) (*model.PinWithAuthor, error)
	// Update はピンを部分更新する。
	Update(ctx context.Context, userID, pinID string, input pin.UpdateInput) (*model.PinWithAuthor, error)
	// Delete はピンを削除する。
	Delete(ctx context.Context, userID, pinID string) error
}

// PinMetrics はピンイベントの記録インターフェース。
type PinMetrics interface {
	RecordPinCreated()
}

// PinHandler はピン管理のHTTPハンドラー。
type PinHandler struct {
	service PinServiceInterface
	metrics PinMetrics
}

// NewPinHandler はPinHandlerを生成する。
func NewPinHandler(service PinServiceInterface, metrics PinMetrics) *PinHandler {
	return &PinHandler{
		service: service,
		metrics: metrics,
	}
}

// createPinRequest はピン作成リクエストのボディ。
type createPinRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Prefecture  string     `json:"prefecture"`
	Address     string     `json:"address"`
	VisitedAt   *time.Time `json:"visitedAt"`
}

// updatePinRequest はピン更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type updatePinRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	Prefecture  *string    `json:"prefecture"`
	Address     *string    `json:"address"`
	VisitedAt   *time.Time `json:"visitedAt"`
}

// Create はピン作成を処理する。対象グループはX-Group-Idヘッダーで指定する。
// POST /api/pins
func (h *PinHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.AuthUserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	groupID := r.Header.Get(groupIDHeader)
	if groupID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewGroupIDRequiredError())
		return
	}

	var req createPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	created, err := h.service.Create(r.Context(), user.ID, groupID, pin.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Prefecture:  req.Prefecture,
		Address:     req.Address,
		VisitedAt:   req.VisitedAt,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordPinCreated()
	}

	writeSuccessResponse(w, http.StatusCreated, toPinResponse(created))
}

// ListByGroup はグループのピン一覧を訪問日時の降順で返す。
// グループメンバーシップはミドルウェアで検証済み。
// GET /api/pins/group/{groupId}
func (h *PinHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := middleware.GroupIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewGroupIDRequiredError())
		return
	}

	pins, err := h.service.ListByGroup(r.Context(), groupID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]pinResponse, len(pins))
	for i, p := range pins {
		results[i] = toPinResponse(p)
	}

	writeSuccessResponse(w, http.StatusOK, results)
}

// Get はピン詳細を取得する。
// GET /api/pins/{id}
func (h *PinHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.AuthUserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	p, err := h.service.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, toPinResponse(p))
}

// Update はピンの部分更新を処理する。
// PUT /api/pins/{id}
func (h *PinHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.AuthUserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updatePinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	updated, err := h.service.Update(r.Context(), user.ID, chi.URLParam(r, "id"), pin.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Prefecture:  req.Prefecture,
		Address:     req.Address,
		VisitedAt:   req.VisitedAt,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, toPinResponse(updated))
}

// Delete はピン削除を処理する。
// DELETE /api/pins/{id}
func (h *PinHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.AuthUserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, nil)
}
