// README: Entry point; loads config, wires services, starts HTTP server and background schedulers.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"chauffeur/internal/config"
	httptransport "chauffeur/internal/http"
	"chauffeur/internal/infra"
	"chauffeur/internal/maps"
	"chauffeur/internal/modules/booking"
	"chauffeur/internal/modules/pricing"
)

func main() {
	cfg, err := config.Load()
	logger := infra.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	card, err := pricing.LoadRateCardFile(cfg.Pricing.RateCardPath)
	if err != nil {
		logger.WithError(err).Fatal("load rate card")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.WithError(err).Fatal("connect postgres")
	}
	defer dbPool.Close()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		logger.WithError(err).Fatal("connect redis")
	}
	defer redisClient.Close()

	var rates pricing.RateSource = pricing.StaticRates{Card: card}
	if cfg.Pricing.UseDBRates {
		rates = pricing.DBRates{Base: card, Store: pricing.NewStore(dbPool)}
	}

	var route pricing.RouteEstimator
	if cfg.Maps.APIKey != "" {
		rs, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			logger.WithError(err).Fatal("maps init")
		}
		route = rs
	} else {
		logger.Warn("CHAUFFEUR_MAPS_API_KEY not set, airport transfers bill minimum hours")
	}

	quoteStore := pricing.NewQuoteStore(redisClient, cfg.Pricing.QuoteTTL)
	pricingSvc := pricing.NewService(rates, quoteStore, route, logger)

	g, gctx := errgroup.WithContext(ctx)

	deps := httptransport.ServerDeps{Pricing: pricingSvc, Log: logger}
	if cfg.Firebase.ProjectID != "" {
		verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			logger.WithError(err).Fatal("firebase init")
		}
		bookingSvc := booking.NewService(booking.NewStore(dbPool), pricingSvc, cfg.Booking, logger)
		deps.Booking = bookingSvc
		deps.Verifier = verifier
		g.Go(func() error {
			bookingSvc.RunExpiryMonitor(gctx)
			return nil
		})
	} else {
		logger.Warn("CHAUFFEUR_FIREBASE_PROJECT_ID not set, booking routes disabled")
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httptransport.NewServer(deps).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		logger.WithField("addr", cfg.HTTP.Addr).Info("chauffeur api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("chauffeur api stopped")
	}
	logger.Info("chauffeur api stopped")
}
