package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/contesthub/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CronSecret        string

	// 運用
	DB             Pinger
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	ContestService  ContestServiceInterface
	ReminderService ReminderServiceInterface
	UserService     UserServiceInterface
	Sweeper         Sweeper
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → SecurityHeaders → CORS → RateLimit(General)
//	認証が必要なルートはさらに Session → RateLimit(General)
//
// レート制限はセッション確定後にユーザー単位、それ以外はクライアントIP単位で数える。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteNotFound(w)
	})

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	contestHandler := NewContestHandler(deps.ContestService)
	reminderHandler := NewReminderHandler(deps.ReminderService)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig)
	cronHandler := NewCronHandler(deps.Sweeper)

	// --- 運用エンドポイント ---
	r.Get("/health", NewHealthHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証不要のルート（クライアントIP単位のレート制限） ---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})

		r.Get("/api/contests", contestHandler.ListContests)
	})

	// --- 外部スケジューラ ---
	r.With(middleware.NewCronAuthMiddleware(deps.CronSecret, deps.Logger)).
		Post("/api/cron/reminders", cronHandler.SweepReminders)

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.UserFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/reminders", func(r chi.Router) {
			r.Get("/", reminderHandler.List)
			r.Get("/status", reminderHandler.Status)
			r.With(deps.RateLimiter.ReminderCreationMiddleware()).Post("/", reminderHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", reminderHandler.Update)
				r.Delete("/", reminderHandler.Delete)
			})
		})

		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}
