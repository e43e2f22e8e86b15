package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/jobdesk/internal/config"
	"github.com/prperemyshlev/jobdesk/internal/domain"
	"github.com/prperemyshlev/jobdesk/internal/handler"
	"github.com/prperemyshlev/jobdesk/internal/repository"
	"github.com/prperemyshlev/jobdesk/internal/service"
	"github.com/prperemyshlev/jobdesk/internal/utils"
	"github.com/prperemyshlev/jobdesk/internal/xero"
	"github.com/prperemyshlev/jobdesk/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

type handlers struct {
	connection *handler.ConnectionHandler
	xero       *handler.XeroHandler
	sync       *handler.SyncHandler
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	logger := infra.Logger()

	box, err := utils.NewSecretBox(cfg.Security.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secret box: %w", err)
	}

	repos := repository.NewRepositories(infra.Postgres(), box)

	httpClient := &http.Client{Timeout: cfg.Xero.RequestTimeout.Duration}
	oauth := xero.NewOAuth(
		xero.Endpoints{AuthURL: cfg.Xero.AuthURL, TokenURL: cfg.Xero.TokenURL},
		cfg.Xero.RedirectURL,
		cfg.Xero.Scopes,
		httpClient,
	)
	refresher := xero.NewRefresher(oauth, repos.XeroToken, logger)
	client := xero.NewClient(xero.ClientConfig{
		APIBaseURL:     cfg.Xero.APIBaseURL,
		ConnectionsURL: cfg.Xero.ConnectionsURL,
		RevocationURL:  cfg.Xero.RevocationURL,
		Timeout:        cfg.Xero.RequestTimeout.Duration,
	}, httpClient, refresher, logger)

	signer := utils.NewStateSigner(cfg.Xero.StateSecret, cfg.Xero.StateTTL.Duration)
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	accounts := service.AccountCodes{
		Sales:    cfg.Xero.SalesAccountCode,
		Purchase: cfg.Xero.PurchaseAccountCode,
	}

	identityService := service.NewIdentityService(
		repos.Profile,
		service.NewRedisCache(infra.Redis()),
		service.UserInfoEndpoints{
			domain.ProviderGoogle:    cfg.Identity.GoogleUserInfoURL,
			domain.ProviderMicrosoft: cfg.Identity.MicrosoftUserInfoURL,
		},
		httpClient,
		cfg.Identity.CacheTTL.Duration,
		logger,
	)
	tokenService := service.NewTokenService(repos.XeroToken, client, logger)
	connectionService := service.NewConnectionService(
		repos.XeroToken,
		repos.Profile,
		signer,
		service.NewStateNonceStore(infra.Redis()),
		oauth,
		client,
		logger,
	)
	defaultsService := service.NewDefaultsService(
		tokenService,
		client,
		repos.XeroContact,
		repos.XeroItem,
		service.NewRedisLocker(infra.Redis()),
		cfg.Security.SyncLockTTL.Duration,
		accounts,
		logger,
	)
	reconcileService := service.NewReconcileService(tokenService, client, repos.Customers, repos.Suppliers, logger)
	quoteService := service.NewQuoteService(
		tokenService,
		defaultsService,
		client,
		repos.Job,
		repos.XeroContact,
		repos.XeroItem,
		accounts,
		logger,
	)

	h := handlers{
		connection: handler.NewConnectionHandler(tokenService, connectionService, cfg.Frontend.URL, logger),
		xero:       handler.NewXeroHandler(defaultsService, quoteService, logger),
		sync:       handler.NewSyncHandler(reconcileService, logger),
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, h, identityService, rateLimiter, healthChecker, infra.MetricsHandler(), logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	h handlers,
	identity service.IdentityService,
	rateLimiter handler.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
	logger *zap.Logger,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	limit := func(keyFunc func(*gin.Context) string) gin.HandlerFunc {
		return handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, keyFunc, logger)
	}

	api := router.Group("/api")
	{
		// Xero redirects the browser here without identity headers
		api.GET("/xero/callback", limit(handler.IPBasedKey), h.connection.Callback)

		authed := api.Group("", handler.AuthMiddleware(identity))

		xeroGroup := authed.Group("/xero")
		{
			xeroGroup.GET("/token", h.connection.GetToken)
			xeroGroup.POST("/token", h.connection.SaveCredentials)
			xeroGroup.PUT("/token", h.connection.UpdateToken)
			xeroGroup.DELETE("/token", h.connection.Disconnect)
			xeroGroup.GET("/connect", h.connection.Connect)

			xeroGroup.POST("/sync", limit(handler.ProfileKey), h.xero.SyncDefaults)
			xeroGroup.GET("/contacts", h.xero.ListContacts)
			xeroGroup.POST("/contacts", limit(handler.ProfileKey), h.xero.SyncContact)
			xeroGroup.GET("/items", h.xero.ListItems)
			xeroGroup.POST("/items", limit(handler.ProfileKey), h.xero.SyncItems)
			xeroGroup.POST("/quotes", limit(handler.ProfileKey), h.xero.CreateQuote)
		}

		authed.POST("/customers/sync-xero", limit(handler.ProfileKey), h.sync.SyncCustomers)
		authed.POST("/suppliers/sync-xero", limit(handler.ProfileKey), h.sync.SyncSuppliers)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
