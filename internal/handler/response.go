// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Marstach-svg/maple/internal/middleware"
	"github.com/Marstach-svg/maple/internal/model"
)

// successResponse はAPI成功レスポンスの統一フォーマット。
type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// writeSuccessResponse は統一フォーマットで成功レスポンスを書き込む。
func writeSuccessResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(successResponse{
		Success: true,
		Data:    data,
	})
}

// writeAPIErrorResponse は統一エラーフォーマットでレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// writeInvalidRequestBody はリクエストボディの解析失敗レスポンスを書き込む。
func writeInvalidRequestBody(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// 401は認証の失敗、403は認証済みだが権限がない場合に限る。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials, model.ErrCodeUserNotFound:
		return http.StatusUnauthorized
	case model.ErrCodeEmailNotAllowed, model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeEmailTaken, model.ErrCodeInvalidInviteCode, model.ErrCodeGroupFull,
		model.ErrCodeAlreadyMember, model.ErrCodeGroupIDRequired, model.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case model.ErrCodePinNotFound, model.ErrCodeGroupNotFound:
		return http.StatusNotFound
	case model.ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// --- レスポンスDTO ---

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// memberResponse はグループメンバーのAPIレスポンス。
type memberResponse struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// groupResponse はグループ情報のAPIレスポンス。
type groupResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	InviteCode  string           `json:"inviteCode"`
	Members     []memberResponse `json:"members"`
	PinCount    int              `json:"pinCount"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func toGroupResponse(g *model.GroupWithMembers) groupResponse {
	members := make([]memberResponse, len(g.Members))
	for i, m := range g.Members {
		members[i] = memberResponse{
			ID:       m.ID,
			UserID:   m.UserID,
			Role:     string(m.Role),
			Email:    m.UserEmail,
			Name:     m.UserName,
			JoinedAt: m.GroupMember.CreatedAt,
		}
	}

	return groupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		InviteCode:  g.InviteCode,
		Members:     members,
		PinCount:    g.PinCount,
		CreatedAt:   g.Group.CreatedAt,
	}
}

// pinAuthorResponse はピン作成者のAPIレスポンス。
type pinAuthorResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// pinResponse はピン情報のAPIレスポンス。
type pinResponse struct {
	ID          string            `json:"id"`
	GroupID     string            `json:"groupId"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Prefecture  string            `json:"prefecture"`
	Address     string            `json:"address,omitempty"`
	VisitedAt   time.Time         `json:"visitedAt"`
	CreatedBy   pinAuthorResponse `json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func toPinResponse(p *model.PinWithAuthor) pinResponse {
	return pinResponse{
		ID:          p.ID,
		GroupID:     p.GroupID,
		Title:       p.Title,
		Description: p.Description,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Prefecture:  p.Prefecture,
		Address:     p.Address,
		VisitedAt:   p.VisitedAt,
		CreatedBy: pinAuthorResponse{
			ID:    p.CreatedByID,
			Email: p.AuthorEmail,
			Name:  p.AuthorName,
		},
		CreatedAt: p.Pin.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// prefectureStatResponse は都道府県別集計のAPIレスポンス。
type prefectureStatResponse struct {
	Prefecture string `json:"prefecture"`
	Count      int    `json:"count"`
}

func toPrefectureStatResponses(stats []*model.PrefectureStat) []prefectureStatResponse {
	results := make([]prefectureStatResponse, len(stats))
	for i, s := range stats {
		results[i] = prefectureStatResponse{
			Prefecture: s.Prefecture,
			Count:      s.Count,
		}
	}
	return results
}
