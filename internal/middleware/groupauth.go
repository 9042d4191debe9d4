package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Marstach-svg/maple/internal/model"
)

// groupIDContextKey はリクエストコンテキストに検証済みグループIDを格納するためのキー。
var groupIDContextKey = contextKey("group_id")

// MembershipFinder はグループメンバーシップの検索に必要なインターフェース。
// repository.MemberRepositoryの部分集合として定義する。
type MembershipFinder interface {
	FindByUserAndGroup(ctx context.Context, userID, groupID string) (*model.GroupMember, error)
}

// NewGroupMemberMiddleware はURLパスのgroupIdパラメータを検証し、
// 認証済みユーザーがそのグループのメンバーであることを確認するミドルウェアを返す。
// グループID未指定は400、非メンバーは403を返す。
// セッションミドルウェアの後に配置すること。
func NewGroupMemberMiddleware(members MembershipFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			groupID := chi.URLParam(r, "groupId")
			if groupID == "" {
				WriteErrorResponse(w, http.StatusBadRequest, model.NewGroupIDRequiredError())
				return
			}

			user, err := AuthUserFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			member, err := members.FindByUserAndGroup(r.Context(), user.ID, groupID)
			if err != nil {
				slog.Error("failed to find group membership",
					slog.String("error", err.Error()),
					slog.String("group_id", groupID),
				)
				WriteInternalServerError(w)
				return
			}
			if member == nil {
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}

			ctx := context.WithValue(r.Context(), groupIDContextKey, groupID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GroupIDFromContext はリクエストコンテキストから検証済みグループIDを取得する。
// グループメンバーミドルウェアを通過したリクエストでのみ有効。
func GroupIDFromContext(ctx context.Context) (string, error) {
	groupID, ok := ctx.Value(groupIDContextKey).(string)
	if !ok || groupID == "" {
		return "", fmt.Errorf("group ID not found in context")
	}
	return groupID, nil
}
