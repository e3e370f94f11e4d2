package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/contesthub/internal/auth"
	"github.com/hitoshi/contesthub/internal/clist"
	"github.com/hitoshi/contesthub/internal/config"
	"github.com/hitoshi/contesthub/internal/contest"
	"github.com/hitoshi/contesthub/internal/database"
	"github.com/hitoshi/contesthub/internal/handler"
	"github.com/hitoshi/contesthub/internal/logger"
	"github.com/hitoshi/contesthub/internal/mail"
	"github.com/hitoshi/contesthub/internal/metrics"
	"github.com/hitoshi/contesthub/internal/middleware"
	"github.com/hitoshi/contesthub/internal/reminder"
	"github.com/hitoshi/contesthub/internal/repository"
	"github.com/hitoshi/contesthub/internal/security"
	"github.com/hitoshi/contesthub/internal/user"
	"github.com/hitoshi/contesthub/internal/worker/cleanup"
	"github.com/hitoshi/contesthub/internal/worker/sweep"
)

// cleanupInterval は期限切れセッション削除の実行間隔。
const cleanupInterval = 24 * time.Hour

// Init はアプリケーションの初期化を行う。
// .env と環境変数からConfigを読み込み、構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. .env の読み込み（存在しなければ何もしない）
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	// 2. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))

	// 3. 環境変数から設定を読み込む
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandWorker:
		return runWorker(ctx, cfg)
	case CommandSweep:
		return runSweepOnce(ctx, cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// openDB はDB接続を開き、疎通を確認する。
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("database connection established")
	return db, nil
}

// newContestService はCLISTクライアントを組み立てる。REDIS_ADDR が設定されていれば
// 取得結果をRedisにキャッシュする。戻り値のclose関数で外部接続を解放する。
func newContestService(cfg *config.Config, guard *security.Guard, sanitizer contest.TitleSanitizer, m contest.ListingMetrics) (*contest.Service, func()) {
	var source contest.ListingSource = clist.NewClient(
		guard.NewSafeClient(cfg.CLISTTimeout),
		clist.Config{
			BaseURL:  cfg.CLISTBaseURL,
			Username: cfg.CLISTUsername,
			APIKey:   cfg.CLISTAPIKey,
			Limit:    cfg.CLISTLimit,
		},
		slog.Default(),
	)

	closeFn := func() {}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		source = clist.NewCachedSource(source, clist.NewRedisCache(rdb, cfg.ContestCacheTTL), slog.Default())
		closeFn = func() { _ = rdb.Close() }
		slog.Info("contest listing cache enabled",
			slog.String("redis_addr", cfg.RedisAddr),
			slog.Duration("ttl", cfg.ContestCacheTTL),
		)
	}

	return contest.NewService(source, sanitizer, m, slog.Default(), cfg.CLISTTimeout), closeFn
}

// newMailHTTPClient はメール配信APIへの送信に使うHTTPクライアントを返す。
// 送信先の名前解決結果もGuardで検証される。
func newMailHTTPClient(cfg *config.Config, guard *security.Guard) *http.Client {
	return guard.NewSafeClient(cfg.MailTimeout)
}

// newMailTransport はMAIL_TRANSPORT に応じた送信方式を返す。
func newMailTransport(cfg *config.Config, guard *security.Guard) (mail.Transport, func(), error) {
	switch cfg.MailTransport {
	case config.MailTransportResend:
		return mail.NewResendTransport(newMailHTTPClient(cfg, guard), cfg.ResendAPIKey), func() {}, nil
	case config.MailTransportKafka:
		t := mail.NewKafkaTransport(cfg.KafkaBrokers, cfg.KafkaMailTopic)
		return t, func() { _ = t.Close() }, nil
	case config.MailTransportLog:
		return mail.NewLogTransport(slog.Default()), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown mail transport %q", cfg.MailTransport)
	}
}

// newSweeper はリマインダースイープを組み立てる。metricsはnilでもよい。
func newSweeper(cfg *config.Config, guard *security.Guard, repo repository.ReminderRepository, m reminder.SweepMetrics) (*reminder.Sweeper, func(), error) {
	transport, closeFn, err := newMailTransport(cfg, guard)
	if err != nil {
		return nil, nil, err
	}
	notifier := mail.NewNotifier(transport, cfg.MailFrom, slog.Default())
	sweeper := reminder.NewSweeper(repo, notifier, m, slog.Default(), reminder.SweeperConfig{
		MaxConcurrent:   cfg.SweepMaxConcurrent,
		DispatchTimeout: cfg.MailTimeout,
		Location:        cfg.DisplayTimezone,
	})
	return sweeper, closeFn, nil
}

// newRegistry はプロセス・Goランタイムのコレクタを登録したレジストリを返す。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// newWorkerRouter はワーカーが公開する /health と /metrics のルーターを返す。
func newWorkerRouter(db handler.Pinger, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NewRecoveryMiddleware(slog.Default()))
	r.Get("/health", handler.NewHealthHandler(db))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(reg))
	return r
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	reminderRepo := repository.NewPostgresReminderRepo(db)

	// 3. セキュリティ・計測の初期化
	guard := security.NewGuard()
	sanitizer := security.NewTextSanitizer()
	reg := newRegistry()
	collector := metrics.NewCollector(reg)

	// 4. ドメインサービスの初期化
	contestService, closeCache := newContestService(cfg, guard, sanitizer, collector)
	defer closeCache()

	reminderService := reminder.NewService(reminderRepo, guard, sanitizer, cfg.DisplayTimezone, slog.Default())
	sweeper, closeMail, err := newSweeper(cfg, guard, reminderRepo, collector)
	if err != nil {
		return err
	}
	defer closeMail()

	authService := auth.NewService(userRepo, sessionRepo, auth.ServiceConfig{
		SessionMaxAge: cfg.SessionMaxAge,
	}, slog.Default())
	userService := user.NewService(userRepo, sessionRepo, reminderRepo, slog.Default())

	rateLimiter := middleware.NewRateLimiter(
		middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitReminder),
		slog.Default(),
	)
	defer rateLimiter.Stop()

	// 5. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		SessionFinder:     sessionRepo,
		UserFinder:        userRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CronSecret:        cfg.CronSecret,

		DB:             db,
		MetricsHandler: metrics.Handler(reg),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		ContestService:  contestService,
		ReminderService: reminderService,
		UserService:     userService,
		Sweeper:         sweeper,
	})

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// リマインダースイープを SWEEP_INTERVAL 毎に、期限切れセッションの削除を日次で実行する。
// スイープの計測値は SERVER_PORT の /metrics で公開する。
func runWorker(ctx context.Context, cfg *config.Config) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := newRegistry()
	collector := metrics.NewCollector(reg)

	reminderRepo := repository.NewPostgresReminderRepo(db)
	sweeper, closeMail, err := newSweeper(cfg, security.NewGuard(), reminderRepo, collector)
	if err != nil {
		return err
	}
	defer closeMail()

	scheduler := sweep.NewScheduler(sweeper, slog.Default())
	cleanupJob := cleanup.NewCleanupJob(db, slog.Default())
	cleanupJob.RetentionDays = cfg.SessionRetentionDays

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      newWorkerRouter(db, reg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("worker starting",
		slog.Duration("sweep_interval", cfg.SweepInterval),
		slog.Int("max_concurrent", cfg.SweepMaxConcurrent),
		slog.String("mail_transport", cfg.MailTransport),
		slog.String("metrics_addr", server.Addr),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheduler.Start(gctx, cfg.SweepInterval)
		return nil
	})
	g.Go(func() error {
		cleanupJob.Start(gctx, cleanupInterval)
		return nil
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server listen error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("worker stopped gracefully")
	return nil
}

// runSweepOnce はスイープを1回だけ実行して終了する。外部のcronから起動する用途。
// 短命なプロセスのため計測値は公開せず、結果はSweeperのログにのみ残す。
func runSweepOnce(ctx context.Context, cfg *config.Config) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sweeper, closeMail, err := newSweeper(cfg, security.NewGuard(), repository.NewPostgresReminderRepo(db), nil)
	if err != nil {
		return err
	}
	defer closeMail()

	sweep.NewScheduler(sweeper, slog.Default()).RunOnce(ctx)
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

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
	)
	return nil
}

// runHealthcheck はdistroless環境でのDockerヘルスチェック用サブコマンド。
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
