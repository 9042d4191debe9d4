// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/Marstach-svg/maple/internal/auth"
	"github.com/Marstach-svg/maple/internal/config"
	"github.com/Marstach-svg/maple/internal/database"
	"github.com/Marstach-svg/maple/internal/group"
	"github.com/Marstach-svg/maple/internal/handler"
	"github.com/Marstach-svg/maple/internal/logger"
	"github.com/Marstach-svg/maple/internal/metrics"
	"github.com/Marstach-svg/maple/internal/middleware"
	"github.com/Marstach-svg/maple/internal/pin"
	"github.com/Marstach-svg/maple/internal/repository"
	"github.com/Marstach-svg/maple/internal/security"
	"github.com/Marstach-svg/maple/internal/session"
	"github.com/Marstach-svg/maple/internal/watch"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWatch:
		return runWatch(cfg, args[1:])
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	groupRepo := repository.NewPostgresGroupRepo(db)
	memberRepo := repository.NewPostgresMemberRepo(db)
	pinRepo := repository.NewPostgresPinRepo(db)

	// 3. セッションCookieの初期化
	cookies := session.NewCookieManager(
		session.NewCodec(cfg.SessionSecret),
		session.CookieConfig{
			Secure: cfg.CookieSecure,
			Domain: cfg.CookieDomain,
			MaxAge: cfg.SessionMaxAge,
		},
	)

	// 4. ドメインサービスの初期化
	sanitizer := security.NewTextSanitizer()
	authService := auth.NewService(userRepo, cfg, sanitizer)
	groupService := group.NewService(groupRepo, memberRepo, sanitizer)
	pinService := pin.NewService(pinRepo, memberRepo, sanitizer)

	// 5. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. レート制限の初期化（configはreq/min単位、rate.Limitはreq/sec単位）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.AuthRate = rate.Limit(float64(cfg.RateLimitAuth) / 60.0)
	rateLimiterCfg.AuthBurst = cfg.RateLimitAuth
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 7. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Cookies:           cookies,
		UserFinder:        userRepo,
		MembershipFinder:  memberRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		AuthService:  authService,
		GroupService: groupService,
		PinService:   pinService,

		Metrics:        collector,
		MetricsHandler: metrics.Handler(registry),
	})

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWatch はポーリングクライアントモードで起動する。
// APIにログインし、指定グループのピンと集計の変化を標準出力に流す。
// 使い方: maple watch <groupId>（認証情報はWATCH_EMAIL / WATCH_PASSWORD）
func runWatch(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: maple watch <groupId>")
	}
	groupID := args[0]

	email := os.Getenv("WATCH_EMAIL")
	password := os.Getenv("WATCH_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("WATCH_EMAIL and WATCH_PASSWORD must be set")
	}

	client, err := watch.NewClient(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to create watch client: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := client.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	watcher := watch.NewWatcher(client, watch.WatcherConfig{
		GroupID:  groupID,
		Interval: cfg.WatchInterval,
	}, nil)

	encoder := json.NewEncoder(os.Stdout)
	watcher.OnPins = func(data json.RawMessage) {
		encoder.Encode(map[string]any{"type": "pins", "data": data})
	}
	watcher.OnStats = func(data json.RawMessage) {
		encoder.Encode(map[string]any{"type": "prefecture_stats", "data": data})
	}

	slog.Info("watch started",
		slog.String("group_id", groupID),
		slog.Duration("interval", cfg.WatchInterval),
	)

	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("watch loop failed: %w", err)
	}

	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /api/health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/api/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
