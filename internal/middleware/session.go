// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/chefsite/internal/logger"
	"github.com/hitoshi/chefsite/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッションを格納するためのキー。
var sessionContextKey = contextKey("session")

// SessionResolver はトークンから有効なセッションを解決するインターフェース。
// auth.Serviceが満たす。
type SessionResolver interface {
	CurrentSession(ctx context.Context, token string) (*model.Session, error)
}

// NewSessionMiddleware はCookieのトークンからセッションを解決し、
// 認証済みの場合はリクエストコンテキストに注入するミドルウェアを返す。
// 未認証のリクエストはそのまま通し、認可の判断は後段のハンドラーに任せる。
// セッションストア自体の障害時のみ500を返す。
func NewSessionMiddleware(resolver SessionResolver, cookieName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := resolver.CurrentSession(r.Context(), cookie.Value)
			if errors.Is(err, model.ErrNotAuthenticated) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slog.Error("failed to resolve session",
					slog.String("session", logger.TokenPrefix(cookie.Value)),
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}

			if info := requestInfoFromContext(r.Context()); info != nil {
				info.identityID = sess.IdentityID
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}

// SessionFromContext はリクエストコンテキストから認証済みセッションを取得する。
// セッションミドルウェアを通過し、かつ認証済みのリクエストでのみokがtrueになる。
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok || sess == nil {
		return nil, false
	}
	return sess, true
}

// ContextWithSession はコンテキストにセッションを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
