package main

import (
    "context"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/rs/zerolog/log"

    cfgpkg "github.com/local/printdesk/internal/config"
    "github.com/local/printdesk/internal/limiter"
    logpkg "github.com/local/printdesk/internal/logger"
    "github.com/local/printdesk/internal/metrics"
    "github.com/local/printdesk/internal/order"
    "github.com/local/printdesk/internal/statuscheck"
    "github.com/local/printdesk/internal/storage"
    "github.com/local/printdesk/internal/upload"
)

func main() {
    cfg := cfgpkg.Load()

    // Init logging
    _ = logpkg.Init(logpkg.Options{
        Level: cfg.Logging.Level,
        Pretty: cfg.Logging.Pretty,
        File: cfg.Logging.File,
        MaxSizeMB: cfg.Logging.MaxSizeMB,
        MaxBackups: cfg.Logging.MaxBackups,
        MaxAgeDays: cfg.Logging.MaxAgeDays,
        Compress: cfg.Logging.Compress,
        Service: "printdesk-server",
        SendToAxiom: cfg.Axiom.Send && cfg.Axiom.APIKey != "",
        AxiomAPIKey: cfg.Axiom.APIKey,
        AxiomOrgID: cfg.Axiom.OrgID,
        AxiomDataset: cfg.Axiom.Dataset,
        AxiomFlush: cfg.Axiom.FlushInterval,
    })
    defer logpkg.Close()

    metrics.Init()

    // Storage backend
    initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
    backend, err := storage.New(initCtx, cfg.Storage)
    initCancel()
    if err != nil {
        log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("failed to init storage")
    }
    defer func() { _ = storage.Close(backend) }()
    log.Info().Str("backend", backend.Name()).Str("root", cfg.Storage.RootFolderID).Msg("storage ready")

    // Rate limiter (optional)
    deps := upload.Dependencies{
        Storage:      storage.NewUploader(backend),
        RootFolderID: cfg.Storage.RootFolderID,
        Estimator:    order.NewEstimator(nil),
        Pricing:      &order.Pricing{BW: cfg.Pricing.BW, Color: cfg.Pricing.Color},
        UploadDir:    cfg.Server.UploadDir,
        PublicDir:    cfg.Server.PublicDir,
        MaxMemory:    cfg.Server.MaxMultipartMemory,
        TrustProxy:   cfg.RateLimit.TrustProxy,
    }
    statusOpts := statuscheck.Options{Storage: backend}
    if cfg.RateLimit.RedisURL != "" {
        lim, err := limiter.New(limiter.Options{
            RedisURL: cfg.RateLimit.RedisURL,
            Limit:    cfg.RateLimit.Limit,
            Window:   cfg.RateLimit.Window,
        })
        if err != nil {
            log.Warn().Err(err).Msg("rate limiter disabled: redis unavailable")
        } else {
            defer lim.CloseClient()
            deps.Limiter = lim
            statusOpts.Redis = lim
            log.Info().Int("limit", lim.Limit()).Dur("window", cfg.RateLimit.Window).Msg("upload rate limit enabled")
        }
    }
    deps.Status = statuscheck.New(statusOpts)

    srv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           upload.New(deps).Handler(),
        ReadHeaderTimeout: 10 * time.Second,
    }

    go func(){
        log.Info().Msgf("Server running on http://localhost:%s", cfg.Server.Port)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal().Err(err).Msg("http server error")
        }
    }()

    // Graceful shutdown
    stop := make(chan os.Signal, 1)
    signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
    <-stop
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    _ = srv.Shutdown(ctx)
    fmt.Println("shutdown complete")
}
