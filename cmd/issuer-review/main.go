package main

import (
	"context"
	"crypto/ed25519"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"credrelay/internal/credential/sign"
	"credrelay/internal/credential/store"
	"credrelay/internal/did"
	"credrelay/internal/envelope"
	"credrelay/internal/lifecycle"
	lifecyclemetrics "credrelay/internal/lifecycle/metrics"
	"credrelay/internal/platform/config"
	"credrelay/internal/platform/httpserver"
	"credrelay/internal/platform/logger"
	"credrelay/internal/platform/ops"
	"credrelay/internal/transport/api"
	httptransport "credrelay/internal/transport/http"
	id "credrelay/pkg/domain"
	"credrelay/pkg/secrets"
)

// main wires the issuer-side review service: an HTTP API for deciding
// lifecycle requests plus an ops endpoint for probes and metrics.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	issuerDID, err := id.ParseDID(cfg.IssuerDID)
	if err != nil {
		log.Error("invalid issuer DID", "error", err)
		os.Exit(1)
	}
	privateKey, err := secrets.DecodeKey(cfg.PrivateKeyHex, 32)
	if err != nil {
		log.Error("invalid issuer private key", "error", err)
		os.Exit(1)
	}
	publicKey, err := secrets.PublicKeyOf(privateKey)
	if err != nil {
		log.Error("could not derive issuer public key", "error", err)
		os.Exit(1)
	}
	signingKey, err := secrets.DecodeKey(cfg.SigningKeyHex, ed25519.PrivateKeySize)
	if err != nil {
		log.Error("invalid issuer signing key", "error", err)
		os.Exit(1)
	}
	signer, err := sign.New(issuerDID, ed25519.PrivateKey(signingKey))
	if err != nil {
		log.Error("could not build credential signer", "error", err)
		os.Exit(1)
	}

	issuerStore, err := store.OpenSQLite(cfg.StorePath)
	if err != nil {
		log.Error("could not open record store", "path", cfg.StorePath, "error", err)
		os.Exit(1)
	}
	defer issuerStore.Close()

	boundary := api.New(cfg.APIBaseURL,
		api.WithToken(cfg.AccessToken),
		api.WithLogger(log),
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
	)
	resolver := did.New(boundary, cfg.DIDCacheTTL, did.WithLogger(log))

	processor := lifecycle.New(boundary, envelope.NewWithMinLen(cfg.MinEnvelopeLen), resolver, issuerStore, signer,
		lifecycle.Config{
			IssuerDID:  issuerDID,
			IssuerName: cfg.IssuerName,
			PrivateKey: privateKey,
			PublicKey:  publicKey,
		},
		lifecycle.WithLogger(log),
		lifecycle.WithMetrics(lifecyclemetrics.New()),
	)

	handler := httptransport.NewHandler(processor, issuerStore, log)
	router := httptransport.NewRouter(handler, log)

	opsHandler := ops.New(cfg.Environment, log)
	opsHandler.RegisterCheck("store", func() error {
		_, err := issuerStore.ListRecords(context.Background())
		return err
	})

	apiSrv := httpserver.New(cfg.ReviewAddr, router)
	opsSrv := httpserver.New(cfg.OpsAddr, opsHandler.Router())

	go serve(log, "review api", apiSrv)
	go serve(log, "ops", opsSrv)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiSrv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := opsSrv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func serve(log *slog.Logger, name string, srv *http.Server) {
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "server", name, "error", err)
		os.Exit(1)
	}
}
