package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/chefsite/internal/auth"
	"github.com/hitoshi/chefsite/internal/config"
	"github.com/hitoshi/chefsite/internal/contact"
	"github.com/hitoshi/chefsite/internal/database"
	"github.com/hitoshi/chefsite/internal/handler"
	"github.com/hitoshi/chefsite/internal/logger"
	"github.com/hitoshi/chefsite/internal/metrics"
	"github.com/hitoshi/chefsite/internal/order"
	"github.com/hitoshi/chefsite/internal/repository"
	"github.com/hitoshi/chefsite/internal/session"
	"github.com/hitoshi/chefsite/internal/web"
	"github.com/hitoshi/chefsite/internal/worker/cleanup"
)

const connectTimeout = 10 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたレベルで再構成
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

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
			port = "3000"
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
		slog.String("session_store", cfg.SessionStore),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// sessionBackend は構築したセッションストアと、終了時の後始末をまとめる。
type sessionBackend struct {
	store session.Store
	repo  repository.SessionRepository // postgresの場合のみ非nil
	close func()
}

// newSessionBackend は設定に応じたセッションストアを構築する。
// redisの場合は起動時に疎通を確認する。
func newSessionBackend(ctx context.Context, cfg *config.Config, db *sql.DB) (*sessionBackend, error) {
	ttl := cfg.SessionTTL()

	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		repo := repository.NewPostgresSessionRepo(db)
		return &sessionBackend{
			store: session.NewRepositoryStore(repo, ttl),
			repo:  repo,
			close: func() {},
		}, nil

	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return &sessionBackend{
			store: session.NewRedisStore(client, ttl),
			close: func() { client.Close() },
		}, nil

	default:
		store := session.NewMemoryStore(ttl, cfg.SessionCleanupInterval)
		return &sessionBackend{store: store, close: store.Stop}, nil
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. DB接続とスキーマ適用
	db, err := database.Connect(ctx, cfg.DatabaseURL, connectTimeout)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("database connection established", slog.Uint64("schema_version", uint64(version)))

	// 2. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 3. セッションストア
	backend, err := newSessionBackend(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer backend.close()

	// postgresバックエンドは期限切れ行をサーバー内でも掃除する
	if backend.repo != nil {
		job := cleanup.NewCleanupJob(backend.repo, collector, slog.Default())
		job.Interval = cfg.SessionCleanupInterval
		go job.Start(ctx)
	}

	// 4. ドメインサービス
	hasher := auth.NewHasher(cfg.BcryptCost)
	hashes := auth.NewHashPool(hasher, cfg.HashConcurrency)
	hashes.ObserveLatency(collector.RecordHashLatency)

	authService := auth.NewService(repository.NewPostgresIdentityRepo(db), backend.store, hashes)
	contactService := contact.NewService(repository.NewPostgresContactRepo(db))
	orderService := order.NewService(repository.NewPostgresOrderRepo(db))

	// 5. 静的ファイル
	static, err := web.FileSystem(cfg.PublicDir)
	if err != nil {
		return fmt.Errorf("failed to load static files: %w", err)
	}

	// 6. ルーター
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:          slog.Default(),
		SessionResolver: authService,
		HealthChecker:   db,
		Metrics:         collector,
		MetricsHandler:  metrics.Handler(registry),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieName:    cfg.SessionCookieName,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		ContactService: contactService,
		OrderService:   orderService,
		Static:         static,
	})

	slog.Info("password hashing configured",
		slog.Int("bcrypt_cost", hasher.Cost()),
		slog.Int("concurrency", hashes.Size()),
	)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// postgresのsessionsテーブルから期限切れセッションを定期的に削除する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL, connectTimeout)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	if cfg.SessionStore != config.SessionStorePostgres {
		slog.Warn("session store does not persist to postgres; worker only purges the sessions table",
			slog.String("session_store", cfg.SessionStore),
		)
	}

	job := cleanup.NewCleanupJob(repository.NewPostgresSessionRepo(db), nil, slog.Default())
	job.Interval = cfg.SessionCleanupInterval

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting", slog.Duration("cleanup_interval", job.Interval))

	// メインgoroutineで実行（ブロッキング）
	job.Start(ctx)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
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
