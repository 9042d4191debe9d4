// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Marstach-svg/maple/internal/model"
	"github.com/Marstach-svg/maple/internal/session"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// authUserContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var authUserContextKey = contextKey("auth_user")

// AuthUser は認証済みリクエストのユーザー情報。
type AuthUser struct {
	ID    string
	Email string
	Name  string
}

// UserFinder はユーザーの検索に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// NewSessionMiddleware はHTTP Only Cookieの署名付きトークンを検証し、
// トークンが指すユーザーの存在を確認するミドルウェアを返す。
// 認証済みユーザーをリクエストコンテキストに注入する。
// Cookieなし・署名不正・期限切れ・ユーザー削除済みはすべて401 Unauthorizedを返す。
func NewSessionMiddleware(cookies *session.CookieManager, users UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Cookieのトークンを検証
			payload, err := cookies.Read(r)
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. トークンが指すユーザーの存在確認
			user, err := users.FindByID(r.Context(), payload.UserID)
			if err != nil {
				slog.Error("failed to find user for session",
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			if user == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 3. 認証済みユーザーをコンテキストに注入
			ctx := ContextWithAuthUser(r.Context(), &AuthUser{
				ID:    user.ID,
				Email: user.Email,
				Name:  user.Name,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthUserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func AuthUserFromContext(ctx context.Context) (*AuthUser, error) {
	user, ok := ctx.Value(authUserContextKey).(*AuthUser)
	if !ok || user == nil || user.ID == "" {
		return nil, fmt.Errorf("authenticated user not found in context")
	}
	return user, nil
}

// ContextWithAuthUser はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithAuthUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, authUserContextKey, user)
}
