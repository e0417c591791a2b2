// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/hitoshi/chefsite/internal/logger"
	"github.com/hitoshi/chefsite/internal/metrics"
	"github.com/hitoshi/chefsite/internal/middleware"
	"github.com/hitoshi/chefsite/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password string) (*model.Identity, error)
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieName    string
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は登録・ログイン・ログアウト関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	pages   fs.FS
	metrics metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。
// pagesにはregister.htmlとlogin.htmlを含むファイルシステムを渡す。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, pages fs.FS, mc metrics.MetricsCollector) *AuthHandler {
	if config.CookieName == "" {
		config.CookieName = "session_id"
	}
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &AuthHandler{
		service: service,
		config:  config,
		pages:   pages,
		metrics: mc,
	}
}

// RegisterPage は登録フォームを返す。
// GET /register
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	servePage(w, r, h.pages, "register.html")
}

// LoginPage はログインフォームを返す。
// GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	servePage(w, r, h.pages, "login.html")
}

// Register はアカウントを登録し、ログインフォームへリダイレクトする。
// 失敗時は理由を明かさず登録フォームへ戻す。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	values, err := parseBody(w, r)
	if err != nil {
		slog.Warn("invalid register request", slog.String("error", err.Error()))
		h.metrics.RecordRegistration(metrics.ResultError)
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	password, ok := values.Lookup("password")
	if !ok {
		slog.Warn("register request without password")
		h.metrics.RecordRegistration(metrics.ResultError)
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	_, err = h.service.Register(r.Context(), values.String("email"), password)
	switch {
	case err == nil:
		h.metrics.RecordRegistration(metrics.ResultOK)
		http.Redirect(w, r, "/login", http.StatusFound)
	case errors.Is(err, model.ErrDuplicateEmail):
		slog.Info("registration rejected: email already registered")
		h.metrics.RecordRegistration(metrics.ResultDuplicate)
		http.Redirect(w, r, "/register", http.StatusFound)
	default:
		slog.Error("registration failed", slog.String("error", err.Error()))
		h.metrics.RecordRegistration(metrics.ResultError)
		http.Redirect(w, r, "/register", http.StatusFound)
	}
}

// Login は資格情報を検証してセッションCookieを設定し、トップページへリダイレクトする。
// 既にセッションを持っている場合は古いセッションを破棄する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	values, err := parseBody(w, r)
	if err != nil {
		slog.Warn("invalid login request", slog.String("error", err.Error()))
		h.metrics.RecordLogin(metrics.ResultError)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	password, ok := values.Lookup("password")
	if !ok {
		h.metrics.RecordLogin(metrics.ResultInvalid)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	sess, err := h.service.Login(r.Context(), values.String("email"), password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			h.metrics.RecordLogin(metrics.ResultInvalid)
		} else {
			slog.Error("login failed", slog.String("error", err.Error()))
			h.metrics.RecordLogin(metrics.ResultError)
		}
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	// 以前のセッションを破棄する（セッション固定化対策）
	if prev, err := r.Cookie(h.config.CookieName); err == nil && prev.Value != "" && prev.Value != sess.Token {
		if err := h.service.Logout(r.Context(), prev.Value); err != nil && !errors.Is(err, model.ErrSessionNotFound) {
			slog.Warn("failed to close previous session",
				slog.String("session", logger.TokenPrefix(prev.Value)),
				slog.String("error", err.Error()),
			)
		}
	}

	h.metrics.RecordLogin(metrics.ResultOK)
	h.setSessionCookie(w, sess.Token, h.config.SessionMaxAge)
	http.Redirect(w, r, "/", http.StatusFound)
}

// UserInfo は現在のログインユーザー名を返す。
// GET /getuserinfo
func (h *AuthHandler) UserInfo(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		middleware.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not Authenticated"})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"userName": sess.DisplayName})
}

// Logout はセッションを破棄し、Cookieをクリアしてログインフォームへリダイレクトする。
// セッションストアの障害時のみ500を返す。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.config.CookieName)
	if err == nil && cookie.Value != "" {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil && !errors.Is(err, model.ErrSessionNotFound) {
			slog.Error("failed to logout",
				slog.String("session", logger.TokenPrefix(cookie.Value)),
				slog.String("error", err.Error()),
			)
			http.Error(w, "Failed to log out", http.StatusInternalServerError)
			return
		}
		h.metrics.RecordLogout()
	}

	h.setSessionCookie(w, "", -1)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// setSessionCookie はセッションCookieを設定する。maxAgeが負の場合は削除する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
