package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
)

// NewCronAuthMiddleware は外部スケジューラからの呼び出しを共有シークレットで認証するミドルウェアを返す。
// Authorization: Bearer <secret> を要求する。secretが空の場合はエンドポイント自体を404として隠す。
func NewCronAuthMiddleware(secret string, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				WriteNotFound(w)
				return
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				logger.Warn("cron authentication failed",
					slog.String("path", r.URL.Path),
				)
				WriteUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
