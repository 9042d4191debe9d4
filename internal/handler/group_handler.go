package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Marstach-svg/maple/internal/middleware"
	"github.com/Marstach-svg/maple/internal/model"
)

// GroupServiceInterface はグループハンドラーが必要とするサービスインターフェース。
type GroupServiceInterface interface {
	// Create はグループを作成し、作成者をadminとして登録する。
	Create(ctx context.Context, userID, name, description string) (*model.GroupWithMembers, error)
	// Join は招待コードでグループに参加する。
	Join(ctx context.Context, userID, inviteCode string) (*model.GroupWithMembers, error)
	// ListForUser はユーザーの所属グループ一覧を返す。
	ListForUser(ctx context.Context, userID string) ([]*model.GroupWithMembers, error)
	// PrefectureStats は都道府県ごとのピン数を返す。
	PrefectureStats(ctx context.Context, groupID string) ([]*model.PrefectureStat, error)
}

// GroupMetrics はグループイベントの記録インターフェース。
type GroupMetrics interface {
	RecordGroupCreated()
	RecordGroupJoined()
}

// GroupHandler はグループ管理のHTTPハンドラー。
type GroupHandler struct {
	service GroupServiceInterface
	metrics GroupMetrics
}

// NewGroupHandler はGroupHandlerを生成する。
func NewGroupHandler(service GroupServiceInterface, metrics GroupMetrics) *GroupHandler {
	return &GroupHandler{
		service: service,
		metrics: metrics,
	}
}

// createGroupRequest はグループ作成リクエストのボディ。
type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// joinGroupRequest はグループ参加リクエストのボディ。
type joinGroupRequest struct {
	InviteCode string `json:"inviteCode"`
}

// Create はグループ作成を処理する。
// POST /api/groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.AuthUserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	group, err := h.service.Create(r.Context(), user.ID, req.Name, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordGroupCreated()
	}

	writeSuccessResponse(w, http.StatusCreated, toGroupResponse(group))
}

// Join は招待コードによるグループ参加を処理する。
// POST /api/groups/join
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.AuthUserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req joinGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if req.InviteCode == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidInviteCodeError())
		return
	}

	group, err := h.service.Join(r.Context(), user.ID, req.InviteCode)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordGroupJoined()
	}

	writeSuccessResponse(w, http.StatusOK, toGroupResponse(group))
}

// List は認証済みユーザーの所属グループ一覧を返す。
// GET /api/groups
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.AuthUserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	groups, err := h.service.ListForUser(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]groupResponse, len(groups))
	for i, g := range groups {
		results[i] = toGroupResponse(g)
	}

	writeSuccessResponse(w, http.StatusOK, results)
}

// PrefectureStats はグループの都道府県別ピン数を返す。
// グループメンバーシップはミドルウェアで検証済み。
// GET /api/groups/{groupId}/prefecture-stats
func (h *GroupHandler) PrefectureStats(w http.ResponseWriter, r *http.Request) {
	groupID, err := middleware.GroupIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewGroupIDRequiredError())
		return
	}

	stats, err := h.service.PrefectureStats(r.Context(), groupID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, toPrefectureStatResponses(stats))
}
