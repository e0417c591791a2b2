package handler

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/chefsite/internal/metrics"
	"github.com/hitoshi/chefsite/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger          *slog.Logger
	SessionResolver middleware.SessionResolver
	HealthChecker   HealthChecker

	// メトリクス（nilの場合は記録しない）
	Metrics        metrics.MetricsCollector
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// お問い合わせ・注文
	ContactService ContactServiceInterface
	OrderService   OrderServiceInterface

	// 静的ファイル
	Static fs.FS
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Logging → Recovery → SecurityHeaders → (Session: /getuserinfo, /order のみ)
//
// セッションの解決が必要なのはユーザー情報と注文のみで、静的ファイル配信ではストアを参照しない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	mc := deps.Metrics
	if mc == nil {
		mc = metrics.Nop{}
	}

	r.Use(middleware.NewLoggingMiddleware(log, mc))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Static, mc)
	contactHandler := NewContactHandler(deps.ContactService, mc)
	orderHandler := NewOrderHandler(deps.OrderService, mc)

	// --- 運用 ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証不要のルート ---
	r.Get("/register", authHandler.RegisterPage)
	r.Post("/register", authHandler.Register)
	r.Get("/login", authHandler.LoginPage)
	r.Post("/login", authHandler.Login)
	r.Get("/logout", authHandler.Logout)
	r.Post("/submit-form", contactHandler.Submit)

	// --- セッションを参照するルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionResolver, authHandler.config.CookieName))

		r.Get("/getuserinfo", authHandler.UserInfo)
		r.Post("/order", orderHandler.Place)
	})

	// --- 静的ファイル ---
	static := NewStaticHandler(deps.Static)
	r.Get("/*", static.ServeHTTP)
	r.Head("/*", static.ServeHTTP)

	return r
}
