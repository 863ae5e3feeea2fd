package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"shopalert/internal/common/pagination"
	appconfig "shopalert/internal/config"
	pgRepo "shopalert/internal/infra/adapter/persistence/postgres"
	"shopalert/internal/infra/db"
	"shopalert/internal/infra/publisher"
	"shopalert/internal/observability/logging"
	"shopalert/internal/observability/tracing"
	pkgconfig "shopalert/pkg/config"

	"shopalert/internal/usecase/alertlog"
	"shopalert/internal/usecase/dispatch"
	"shopalert/internal/usecase/gate"
	"shopalert/internal/usecase/template"

	hhttp "shopalert/internal/handler/http"
	halert "shopalert/internal/handler/http/alert"
	hauth "shopalert/internal/handler/http/auth"
	"shopalert/internal/handler/http/middleware"
	"shopalert/internal/handler/http/requestid"
	hwebhook "shopalert/internal/handler/http/webhook"
	authservice "shopalert/internal/service/auth"
)

// @title           Shop Alert API
// @version         1.0
// @description     Shopify イベント通知サービスの REST API
// @description     Webhook 受信、Telegram 配信、アラート履歴の照会と再送を提供します。

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT トークンによる認証。ヘッダーに "Bearer {token}" 形式で指定してください。

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	validateAdminCredentials(logger)
	validateJWTSecret(logger)
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	serverComponents := setupServer(logger, database, version)

	runServer(logger, serverComponents, version)
}

// validateAdminCredentials refuses to start without operator credentials.
// An empty ADMIN_USER_PASSWORD would otherwise make every login attempt
// with an empty password succeed the constant-time compare.
func validateAdminCredentials(logger *slog.Logger) {
	if os.Getenv("ADMIN_USER") == "" || os.Getenv("ADMIN_USER_PASSWORD") == "" {
		logger.Error("ADMIN_USER and ADMIN_USER_PASSWORD must be set")
		os.Exit(1)
	}
}

// validateJWTSecret validates the JWT_SECRET environment variable for security requirements.
func validateJWTSecret(logger *slog.Logger) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	// セキュリティ: 最小32文字（256ビット）を強制
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	// セキュリティ: よくある弱い秘密鍵を拒否
	weakSecrets := []string{"secret", "password", "test", "admin", "default"}
	for _, weak := range weakSecrets {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler     http.Handler
	AuthLimiter *middleware.RateLimiter
}

// deliveryChannel is what main needs from a publisher: delivery for the
// dispatch service and circuit state for the health endpoint.
type deliveryChannel interface {
	publisher.Publisher
	hhttp.PublisherHealth
}

// newPublisher selects the outbound delivery channel. Per-shop bot tokens
// and chat ids come from each shop's receiver configuration at dispatch
// time, so the publisher itself only needs transport settings.
func newPublisher(logger *slog.Logger) deliveryChannel {
	if pkgconfig.GetEnvBool("TELEGRAM_DISABLED", false) {
		logger.Warn("Telegram delivery is DISABLED - alerts will be recorded but not sent")
		return publisher.NewNoopPublisher()
	}

	cfg := publisher.TelegramConfig{
		BaseURL: pkgconfig.GetEnvString("TELEGRAM_API_BASE_URL", ""),
		Timeout: pkgconfig.GetEnvDuration("TELEGRAM_TIMEOUT", 10*time.Second),
	}
	pub := publisher.NewTelegramPublisher(cfg)
	logger.Info("Telegram publisher initialized", slog.Duration("timeout", cfg.Timeout))
	return pub
}

// loadAuthProvider builds the credential provider from the security config
// file when present, falling back to built-in defaults so a missing file
// does not block startup.
func loadAuthProvider(logger *slog.Logger) (*hauth.BasicAuthProvider, []string) {
	defaultWeak := []string{"password", "123456", "admin", "test", "secret"}

	path := pkgconfig.GetEnvString("SECURITY_CONFIG_PATH", "config/security.yaml")
	cfg, err := appconfig.LoadSecurityConfig(path)
	if err != nil {
		logger.Warn("security config not loaded, using defaults",
			slog.String("path", path),
			slog.Any("error", err))
		return hauth.NewBasicAuthProvider(8, defaultWeak), hauth.PublicEndpoints
	}

	logger.Info("security config loaded",
		slog.String("path", path),
		slog.String("provider", cfg.GetAuthProvider()),
		slog.Int("min_password_length", cfg.GetMinPasswordLength()))

	endpoints := cfg.GetPublicEndpoints()
	if len(endpoints) == 0 {
		endpoints = hauth.PublicEndpoints
	}
	return hauth.NewBasicAuthProvider(cfg.GetMinPasswordLength(), cfg.GetWeakPasswords()), endpoints
}

// setupServer configures and returns the HTTP handler with all routes and middleware.
func setupServer(logger *slog.Logger, database *sql.DB, version string) *ServerComponents {
	alertRepo := pgRepo.NewAlertRepo(database)
	configRepo := pgRepo.NewConfigRepo(database)

	pub := newPublisher(logger)
	dispatchSvc := dispatch.NewService(gate.NewGate(configRepo), alertRepo, template.NewEngine(), pub)
	logSvc := &alertlog.Service{Repo: alertRepo}

	// Load trusted proxy configuration for IP extraction
	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var ipExtractor middleware.IPExtractor
	if proxyConfig.Enabled {
		ipExtractor = middleware.NewTrustedProxyExtractor(*proxyConfig)
		logger.Info("rate limiting: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
	} else {
		ipExtractor = &middleware.RemoteAddrExtractor{}
		logger.Info("rate limiting: using RemoteAddr (secure mode, proxy headers ignored)")
	}

	rootMux, authLimiter := setupRoutes(database, version, dispatchSvc, logSvc, pub, ipExtractor, logger)
	handler := applyMiddleware(logger, rootMux)

	return &ServerComponents{
		Handler:     handler,
		AuthLimiter: authLimiter,
	}
}

// setupRoutes registers all HTTP routes (public and protected).
func setupRoutes(
	database *sql.DB,
	version string,
	dispatchSvc *dispatch.Service,
	logSvc *alertlog.Service,
	pub deliveryChannel,
	ipExtractor middleware.IPExtractor,
	logger *slog.Logger,
) (*http.ServeMux, *middleware.RateLimiter) {
	// レート制限: 認証エンドポイントは1分間に5リクエストまで
	authRateLimiter := middleware.NewRateLimiter(5, 1*time.Minute, ipExtractor)

	authProvider, publicEndpoints := loadAuthProvider(logger)
	authService := authservice.NewAuthService(authProvider, publicEndpoints)

	publicMux := http.NewServeMux()
	publicMux.Handle("/auth/token", authRateLimiter.Middleware(hauth.TokenHandler(authService)))

	// ヘルスチェックエンドポイント（認証不要）
	publicMux.Handle("/health", &hhttp.HealthHandler{DB: database, Version: version, Publisher: pub})
	publicMux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	publicMux.Handle("/live", &hhttp.LiveHandler{})
	publicMux.Handle("/metrics", hhttp.MetricsHandler())

	// Webhook 受信（送信元はプラットフォームなので JWT 認証の対象外）
	hwebhook.Register(publicMux, dispatchSvc, logger)

	paginationCfg := pagination.LoadFromEnv()

	privateMux := http.NewServeMux()
	halert.Register(privateMux, dispatchSvc, logSvc, paginationCfg, logger)

	// Apply authentication middleware
	protected := hauth.Authz(privateMux)

	rootMux := http.NewServeMux()
	rootMux.Handle("/auth/token", publicMux)
	rootMux.Handle("/health", publicMux)
	rootMux.Handle("/ready", publicMux)
	rootMux.Handle("/live", publicMux)
	rootMux.Handle("/metrics", publicMux)
	rootMux.Handle("/webhooks", publicMux)
	rootMux.Handle("/", protected)

	return rootMux, authRateLimiter
}

// applyMiddleware wraps the handler with the middleware chain.
// Order (outermost first): Tracing → Request ID → Recovery → Logging →
// Timeout → Body Limit → Metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	requestTimeout := pkgconfig.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)

	middlewareChain := handler

	// Apply in reverse order (innermost to outermost)
	middlewareChain = hhttp.MetricsMiddleware(middlewareChain)
	middlewareChain = hhttp.LimitRequestBody(1 << 20)(middlewareChain) // 1MB limit
	middlewareChain = hhttp.Timeout(requestTimeout)(middlewareChain)
	middlewareChain = hhttp.Logging(logger)(middlewareChain)
	middlewareChain = hhttp.Recover(logger)(middlewareChain)
	middlewareChain = requestid.Middleware(middlewareChain)
	middlewareChain = tracing.Middleware(middlewareChain)

	return middlewareChain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 認証レートリミッタの定期クリーンアップ
	if components.AuthLimiter != nil {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					components.AuthLimiter.CleanupExpired()
				}
			}
		}()
	}

	addr := pkgconfig.GetEnvString("LISTEN_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
