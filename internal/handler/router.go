package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Marstach-svg/maple/internal/middleware"
	"github.com/Marstach-svg/maple/internal/session"
)

// Metrics はルーター全体で使用するメトリクス記録インターフェース。
type Metrics interface {
	AuthMetrics
	GroupMetrics
	PinMetrics
	middleware.StatusObserver
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Cookies           *session.CookieManager
	UserFinder        middleware.UserFinder
	MembershipFinder  middleware.MembershipFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// サービス
	AuthService  AuthServiceInterface
	GroupService GroupServiceInterface
	PinService   PinServiceInterface

	// メトリクス（nil可）
	Metrics Metrics

	// /metricsで公開するハンドラー（nil可）
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging →
//	  （認証ルート）AuthRateLimit
//	  （保護ルート）Session → GeneralRateLimit →（グループ配下）GroupMember
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, statusObserver(deps.Metrics)))

	authHandler := NewAuthHandler(deps.AuthService, deps.Cookies, authMetrics(deps.Metrics))
	groupHandler := NewGroupHandler(deps.GroupService, groupMetrics(deps.Metrics))
	pinHandler := NewPinHandler(deps.PinService, pinMetrics(deps.Metrics))

	sessionMW := middleware.NewSessionMiddleware(deps.Cookies, deps.UserFinder)
	groupMemberMW := middleware.NewGroupMemberMiddleware(deps.MembershipFinder)

	// --- 認証不要のルート ---

	r.Get("/api/health", Health)

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// 登録・ログインはIP単位の専用レート制限をかける
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())
		r.Post("/api/auth/register", authHandler.Register)
		r.Post("/api/auth/login", authHandler.Login)
	})

	// ログアウトはCookieを失効させるだけなので認証不要
	r.Post("/api/auth/logout", authHandler.Logout)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(sessionMW)
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/auth/me", authHandler.Me)

		// グループ管理
		r.Route("/api/groups", func(r chi.Router) {
			r.Get("/", groupHandler.List)
			r.Post("/", groupHandler.Create)
			r.Post("/join", groupHandler.Join)

			// GET /api/groups/{groupId}/prefecture-stats - メンバーのみ
			r.With(groupMemberMW).Get("/{groupId}/prefecture-stats", groupHandler.PrefectureStats)
		})

		// ピン管理
		r.Route("/api/pins", func(r chi.Router) {
			r.Post("/", pinHandler.Create)

			// GET /api/pins/group/{groupId} - メンバーのみ
			r.With(groupMemberMW).Get("/group/{groupId}", pinHandler.ListByGroup)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", pinHandler.Get)
				r.Put("/", pinHandler.Update)
				r.Delete("/", pinHandler.Delete)
			})
		})
	})

	return r
}

// Metricsはnil可のため、各ハンドラーへはnilインターフェースとして渡す。
// 型付きnilをインターフェースに詰めるとnil判定が崩れるため明示的に変換する。

func authMetrics(m Metrics) AuthMetrics {
	if m == nil {
		return nil
	}
	return m
}

func groupMetrics(m Metrics) GroupMetrics {
	if m == nil {
		return nil
	}
	return m
}

func pinMetrics(m Metrics) PinMetrics {
	if m == nil {
		return nil
	}
	return m
}

func statusObserver(m Metrics) middleware.StatusObserver {
	if m == nil {
		return nil
	}
	return m
}
