package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"asset_dashboard/internal/app/port"
	"asset_dashboard/internal/app/provider"
	"asset_dashboard/internal/app/service"
	"asset_dashboard/internal/client"
	"asset_dashboard/internal/infrastructure/configloader"
	evmclient "asset_dashboard/internal/infrastructure/network/client"
	networkdefinition "asset_dashboard/internal/infrastructure/network/definition"
	"asset_dashboard/internal/infrastructure/pricesource"
	"asset_dashboard/internal/infrastructure/restapi"
	"asset_dashboard/internal/infrastructure/tokenloader"
	"asset_dashboard/internal/infrastructure/walletloader"
	"asset_dashboard/internal/pkg/logger"
	"asset_dashboard/internal/pkg/metrics"
	"asset_dashboard/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	bootLogger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		bootLogger.Fatal("Failed to load configuration", zap.String("path", cfgPath), zap.Error(err))
	}

	zapLogger := bootLogger
	if cfg.Logging.Development {
		if zapLogger, err = zap.NewDevelopment(); err != nil {
			bootLogger.Fatal("Failed to initialize development logger", zap.Error(err))
		}
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	defer func() { _ = zapLogger.Sync() }()

	logger.InitZap(zapLogger, cfg.Logging.Level)
	appLogger := logger.NewSlogAdapter()
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath), zap.String("priceSource", cfg.PriceSource))

	metrics.MustRegisterMetrics()

	networkProvider := networkdefinition.NewNetworkDefinitionProvider(appLogger, cfg.TokensDir)
	tokenProvider := provider.NewTokenProvider(tokenloader.NewTokenLoader(cfg.TokensDir, appLogger), appLogger)
	balanceProvider := evmclient.NewEVMClientProvider(cfg, appLogger)

	priceSource := newPriceSource(cfg, zapLogger)
	zapLogger.Info("Price source initialized", zap.String("source", priceSource.Name()))

	dashboardSvc := service.NewDashboardService(networkProvider, tokenProvider, balanceProvider, priceSource, appLogger, cfg)

	if cfg.Views.WatchlistFile != "" {
		go prewarm(dashboardSvc, walletloader.NewWatchlistLoader(cfg.Views.WatchlistFile, appLogger), cfg.Dashboard.DefaultChainID, zapLogger)
	}

	handler := restapi.NewDashboardHandler(dashboardSvc, cfg.Dashboard.DefaultChainID, appLogger)
	router := restapi.SetupRouter(handler, cfg, zapLogger)

	addr := cfg.Server.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	dashboardSvc.Shutdown()
	balanceProvider.Close()

	zapLogger.Info("Server exiting")
}

func newPriceSource(cfg *configloader.Config, zapLogger *zap.Logger) port.PriceSource {
	if cfg.PriceSource == configloader.PriceSourceDEXScreener {
		dexClient := client.NewDEXScreenerClient(
			cfg.DEXScreener.BaseURL,
			time.Duration(cfg.DEXScreener.RequestTimeoutMillis)*time.Millisecond,
			zapLogger,
			cfg.TokenPriceSvc.MaxTokensPerBatchRequest,
		)
		return pricesource.NewDEXScreener(dexClient, cfg.TokenPriceSvc.MaxTokensPerBatchRequest, zapLogger)
	}

	cgClient := client.NewCoinGeckoClient(
		cfg.CoinGecko.BaseURL,
		cfg.CoinGecko.APIKey,
		time.Duration(cfg.CoinGecko.RequestTimeoutMillis)*time.Millisecond,
		cfg.CoinGecko.RequestsPerMinute,
		zapLogger,
	)
	return pricesource.NewCoinGecko(cgClient, cfg.Dashboard.VsCurrency, cfg.TokenPriceSvc.MaxTokensPerBatchRequest, zapLogger)
}

func prewarm(svc *service.DashboardService, accounts port.AccountProvider, chainID uint64, zapLogger *zap.Logger) {
	list, err := accounts.GetAccounts()
	if err != nil {
		zapLogger.Warn("Failed to load watchlist", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	opened := svc.Prewarm(ctx, list, chainID)
	zapLogger.Info("Watchlist dashboards opened", zap.Int("opened", opened), zap.Int("accounts", len(list)))
}
