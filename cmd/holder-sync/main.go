package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"credrelay/internal/claimsync"
	syncmetrics "credrelay/internal/claimsync/metrics"
	"credrelay/internal/credential/sign"
	"credrelay/internal/credential/store"
	"credrelay/internal/did"
	"credrelay/internal/envelope"
	"credrelay/internal/platform/config"
	"credrelay/internal/platform/httpserver"
	"credrelay/internal/platform/logger"
	"credrelay/internal/platform/ops"
	"credrelay/internal/transport/api"
	id "credrelay/pkg/domain"
	"credrelay/pkg/secrets"
)

// main wires the holder-side claim synchronizer: a periodic sync loop
// against the ledger boundary plus an ops endpoint for probes and
// metrics. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	holderDID, err := id.ParseDID(cfg.HolderDID)
	if err != nil {
		log.Error("invalid holder DID", "error", err)
		os.Exit(1)
	}
	privateKey, err := secrets.DecodeKey(cfg.PrivateKeyHex, 32)
	if err != nil {
		log.Error("invalid holder private key", "error", err)
		os.Exit(1)
	}

	holderStore, err := store.OpenSQLite(cfg.StorePath)
	if err != nil {
		log.Error("could not open credential store", "path", cfg.StorePath, "error", err)
		os.Exit(1)
	}
	defer holderStore.Close()

	boundary := api.New(cfg.APIBaseURL,
		api.WithToken(cfg.AccessToken),
		api.WithLogger(log),
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
	)

	resolver := did.New(boundary, cfg.DIDCacheTTL, did.WithLogger(log))

	synchronizer := claimsync.New(boundary, envelope.NewWithMinLen(cfg.MinEnvelopeLen), holderStore, claimsync.Config{
		HolderDID:   holderDID,
		PrivateKey:  privateKey,
		AccessToken: cfg.AccessToken,
		PageSize:    cfg.ClaimPageSize,
	},
		claimsync.WithLogger(log),
		claimsync.WithMetrics(syncmetrics.New()),
		claimsync.WithProofChecker(sign.NewChecker(resolver)),
	)

	opsHandler := ops.New(cfg.Environment, log)
	opsHandler.RegisterCheck("store", func() error {
		_, err := holderStore.ListVCs(context.Background())
		return err
	})

	srv := httpserver.New(cfg.OpsAddr, opsHandler.Router())
	go func() {
		log.Info("starting ops server", "addr", cfg.OpsAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("ops server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("starting claim sync loop",
		"holder_did", cfg.HolderDID,
		"interval", cfg.SyncInterval.String(),
	)

	runOnce(ctx, log, synchronizer, cfg.RequestTimeout)
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			runOnce(ctx, log, synchronizer, cfg.RequestTimeout)
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, log *slog.Logger, synchronizer *claimsync.Synchronizer, timeout time.Duration) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := synchronizer.Run(runCtx)
	if err != nil {
		log.Error("claim sync failed", "error", err)
		return
	}
	log.Info("claim sync complete",
		"pages", result.Pages,
		"claimed", result.Claimed,
		"stored", result.Stored,
		"skipped", result.Skipped,
		"confirmed", result.Confirmed,
	)
}
