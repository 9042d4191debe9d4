package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Marstach-svg/maple/internal/middleware"
	"github.com/Marstach-svg/maple/internal/model"
	"github.com/Marstach-svg/maple/internal/session"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は許可リストを検証し、新規ユーザーを登録する。
	Register(ctx context.Context, email, name, password string) (*model.User, error)
	// Login はメールアドレスとパスワードで認証する。
	Login(ctx context.Context, email, password string) (*model.User, error)
	// CurrentUser は認証済みユーザーの情報を返す。
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// AuthMetrics は認証イベントの記録インターフェース。
type AuthMetrics interface {
	RecordRegistration()
	RecordLogin()
}

// AuthHandler は登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	cookies *session.CookieManager
	metrics AuthMetrics
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, cookies *session.CookieManager, metrics AuthMetrics) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookies: cookies,
		metrics: metrics,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register はユーザー登録を処理する。
// 成功時はセッションCookieを発行し、ログイン済み状態にする。
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.cookies.Issue(w, user.ID, user.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRegistration()
	}

	writeSuccessResponse(w, http.StatusCreated, toUserResponse(user))
}

// Login はログインを処理する。
// 成功時はセッションCookieを発行する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.cookies.Issue(w, user.ID, user.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLogin()
	}

	writeSuccessResponse(w, http.StatusOK, toUserResponse(user))
}

// Logout はセッションCookieを失効させる。
// トークンはステートレスなため、サーバー側の破棄処理は不要。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	writeSuccessResponse(w, http.StatusOK, nil)
}

// Me は認証済みユーザー自身の情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	authUser, err := middleware.AuthUserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	user, err := h.service.CurrentUser(r.Context(), authUser.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, toUserResponse(user))
}
