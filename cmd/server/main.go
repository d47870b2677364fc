package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/horlas08/awals-backend/internal/adapters/http"
	"github.com/horlas08/awals-backend/internal/app"
	"github.com/horlas08/awals-backend/internal/auth"
	"github.com/horlas08/awals-backend/internal/booking"
	"github.com/horlas08/awals-backend/internal/config"
	"github.com/horlas08/awals-backend/internal/domain"
	"github.com/horlas08/awals-backend/internal/storage/sqlite"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open store")
	}
	defer store.Close()

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	authorizer := booking.NewAuthorizer(store)
	registry := app.NewRegistry()
	engine := app.NewEngine(registry, verifier, authorizer)

	if cfg.SeedDemo {
		if err := seedDemo(ctx, store, verifier); err != nil {
			log.Error().Err(err).Msg("demo seed failed")
		}
	}

	r := router.SetupRouter(ctx, cfg, engine)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("chat relay started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// seedDemo inserts a sample listing and bookings and logs ready-made tokens
// so the relay can be exercised without the rest of the platform.
func seedDemo(ctx context.Context, store *sqlite.Store, verifier *auth.JWTVerifier) error {
	hostID := domain.UserID(uuid.NewString())
	guestID := domain.UserID(uuid.NewString())

	listing := domain.Listing{ID: "demo-listing", HostID: hostID, Title: "Demo loft"}
	if err := store.PutListing(ctx, listing); err != nil {
		return err
	}

	now := time.Now().UTC()
	stay := domain.Booking{
		ID:        "demo-booking",
		ListingID: listing.ID,
		GuestID:   guestID,
		StartDate: now.AddDate(0, 0, 7),
		EndDate:   now.AddDate(0, 0, 10),
		Status:    domain.BookingConfirmed,
	}
	if err := store.PutBooking(ctx, stay); err != nil {
		return err
	}
	// A service booking: no listing, so only the guest may chat.
	service := domain.Booking{
		ID:        "demo-service-booking",
		GuestID:   guestID,
		StartDate: now.AddDate(0, 0, 3),
		EndDate:   now.AddDate(0, 0, 3),
		Status:    domain.BookingPending,
	}
	if err := store.PutBooking(ctx, service); err != nil {
		return err
	}

	guestToken, err := verifier.Issue(guestID, 24*time.Hour)
	if err != nil {
		return err
	}
	hostToken, err := verifier.Issue(hostID, 24*time.Hour)
	if err != nil {
		return err
	}
	log.Info().Str("booking", string(stay.ID)).Str("guest_token", guestToken).Str("host_token", hostToken).Msg("demo data seeded")
	return nil
}
