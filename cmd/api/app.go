package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sawgrasskings/booking-api/internal/appstate"
	"github.com/sawgrasskings/booking-api/internal/config"
	"github.com/sawgrasskings/booking-api/internal/domain/auth"
	"github.com/sawgrasskings/booking-api/internal/domain/barber"
	"github.com/sawgrasskings/booking-api/internal/domain/booking"
	"github.com/sawgrasskings/booking-api/internal/domain/gallery"
	"github.com/sawgrasskings/booking-api/internal/domain/realtime"
	"github.com/sawgrasskings/booking-api/internal/domain/sharedstate"
	"github.com/sawgrasskings/booking-api/internal/middleware"
	"github.com/sawgrasskings/booking-api/internal/pkg/imaging"
	"github.com/sawgrasskings/booking-api/internal/pkg/jwt"
	"github.com/sawgrasskings/booking-api/internal/pkg/kvstore"
	"github.com/sawgrasskings/booking-api/internal/pkg/metrics"
	pkgresponse "github.com/sawgrasskings/booking-api/internal/pkg/response"
	"github.com/sawgrasskings/booking-api/internal/pkg/storage"
	"github.com/sawgrasskings/booking-api/internal/remote"
)

type stateRepository = sharedstate.Repository

func newFileState(path string) stateRepository { return sharedstate.NewFileRepository(path) }

func newPostgresState(db *sqlx.DB) stateRepository { return sharedstate.NewPostgresRepository(db) }

// appDeps are the connections main opens before wiring.
type appDeps struct {
	Redis     *redis.Client
	KV        kvstore.Store
	Watcher   kvstore.Watcher
	StateRepo stateRepository
	Now       func() time.Time
}

type app struct {
	cfg    *config.Config
	cancel context.CancelFunc

	store  *appstate.Store
	hub    *realtime.Hub
	syncer *remote.Syncer
	jwt    *jwt.Service

	barberHandler  *barber.Handler
	bookingHandler *booking.Handler
	galleryHandler *gallery.Handler
	authHandler    *auth.Handler
	syncHandler    *remote.Handler
	stateHandler   *sharedstate.Handler
	wsHandler      *realtime.Handler

	unsubscribe func()
}

func newApp(parent context.Context, cfg *config.Config, deps appDeps) (*app, error) {
	now := deps.Now
	if now == nil {
		now = cfg.Shop.Now
	}
	ctx, cancel := context.WithCancel(parent)
	a := &app{cfg: cfg, cancel: cancel}

	store, err := appstate.Open(ctx, deps.KV, now)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open app state: %w", err)
	}
	a.store = store
	if deps.Watcher != nil {
		go func() {
			if err := store.Watch(ctx, deps.Watcher); err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Msg("Device store watch stopped")
			}
		}()
	}

	// ---------- Realtime ----------
	a.hub = realtime.NewHub(deps.Redis)
	go a.hub.Run()
	a.unsubscribe = store.Subscribe(func(e appstate.Event) {
		a.hub.BroadcastJSON(realtime.EventStoreChanged, e.Key, e)
	})

	// ---------- Remote mirror ----------
	tracker := remote.NewTracker("remote mirror disabled")
	tracker.OnChange(func(st remote.State) {
		a.hub.BroadcastJSON(realtime.EventRemoteStatus, "", st)
	})
	mirror, err := remote.NewMirror(ctx, remote.Config{
		Mode: cfg.RemoteMode,
		HTTP: remote.HTTPConfig{BaseURL: cfg.RemoteURL},
		Firestore: remote.FirestoreConfig{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsFile: cfg.FirebaseCredentialsFile,
		},
	})
	switch {
	case err == nil:
		a.syncer = remote.NewSyncer(mirror, store, tracker)
		store.SetRemote(a.syncer)
		go func() {
			if err := a.syncer.Start(ctx); err != nil {
				log.Warn().Err(err).Msg("Remote mirror unavailable, running local-only")
			}
		}()
	case cfg.RemoteMode != remote.ModeNone:
		log.Warn().Err(err).Str("mode", cfg.RemoteMode).Msg("Remote mirror not started, running local-only")
	}

	// ---------- Services ----------
	gen, err := cfg.Shop.Generator()
	if err != nil {
		a.Close()
		return nil, err
	}
	barberService := barber.NewService(store)
	bookingService := booking.NewService(store, barberService, booking.Config{
		Generator:    gen,
		MaxDaysAhead: cfg.Shop.MaxDaysAhead,
		Contact: booking.Contact{
			ShopName:  cfg.Shop.Name,
			PhoneE164: cfg.Shop.PhoneE164,
			Email:     cfg.Shop.Email,
		},
		Now: now,
	})

	blobs, err := storage.New(ctx, storage.Config{
		Backend:     cfg.GalleryStorage,
		LocalDir:    cfg.UploadDir,
		BaseURL:     cfg.UploadBaseURL,
		S3Endpoint:  cfg.S3Endpoint,
		S3Region:    cfg.S3Region,
		S3Bucket:    cfg.S3Bucket,
		S3AccessKey: cfg.S3AccessKey,
		S3SecretKey: cfg.S3SecretKey,
		S3PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("gallery storage: %w", err)
	}
	galleryService := gallery.NewService(store, gallery.NewRecentWork(cfg.RecentWorkFile), blobs, imaging.NewProcessor(imaging.DefaultConfig()))

	a.jwt = jwt.NewService(cfg.JWTSecret, cfg.SessionTTL)
	authService := auth.NewService(cfg.Shop.AdminPIN, barberService, a.jwt, store)

	if err := deps.StateRepo.Ensure(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("shared state: %w", err)
	}
	stateService := sharedstate.NewService(deps.StateRepo, a.hub)

	// ---------- Handlers ----------
	a.barberHandler = barber.NewHandler(barberService)
	a.bookingHandler = booking.NewHandler(bookingService)
	a.galleryHandler = gallery.NewHandler(galleryService)
	a.authHandler = auth.NewHandler(authService)
	a.syncHandler = remote.NewHandler(tracker, a.syncer)
	a.stateHandler = sharedstate.NewHandler(stateService)
	a.wsHandler = realtime.NewHandler(a.hub, cfg.AllowedOrigins)

	return a, nil
}

// Router builds the HTTP routes.
func (a *app) Router() http.Handler {
	cfg := a.cfg
	authMiddleware := middleware.Auth(a.jwt)
	adminOnly := middleware.RequireAdmin()
	submitLimiter := middleware.RateLimit(cfg.BookingRatePerMinute)
	unlockLimiter := middleware.RateLimit(cfg.BookingRatePerMinute)

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)

	r.Get("/ws", a.wsHandler.WebSocket)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]interface{}{
			"status":  "ok",
			"remote":  a.remoteStatus(),
			"clients": a.hub.ClientCount(),
		})
	})
	r.Handle("/metrics", metrics.Handler())

	r.With(middleware.StateCORS()).Mount("/api/state", a.stateHandler.Routes())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

		a.barberHandler.PublicRoutes(r)
		a.bookingHandler.PublicRoutes(r, submitLimiter)
		r.Mount("/gallery", a.galleryHandler.PublicRoutes())
		r.Mount("/auth", a.authHandler.Routes(unlockLimiter))

		r.Mount("/desk", a.bookingHandler.DeskRoutes(authMiddleware))

		r.Route("/admin", func(r chi.Router) {
			r.Mount("/barbers", a.barberHandler.AdminRoutes(authMiddleware, adminOnly))
			r.Mount("/gallery", a.galleryHandler.AdminRoutes(authMiddleware, adminOnly))
		})

		r.Route("/sync", func(r chi.Router) {
			r.Use(authMiddleware, adminOnly)
			r.Get("/", a.syncHandler.Status)
			r.Post("/", a.syncHandler.Reconnect)
		})
	})

	if prefix := strings.TrimRight(cfg.UploadBaseURL, "/"); cfg.GalleryStorage == "local" && strings.HasPrefix(prefix, "/") {
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.UploadDir))))
	}

	r.Handle("/*", sharedstate.Static(cfg.StaticDir))

	return r
}

func (a *app) remoteStatus() string {
	if a.syncer == nil {
		return string(remote.StatusLocalOnly)
	}
	return string(a.syncer.Tracker().State().Status)
}

// Close stops background work in reverse order of startup.
func (a *app) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.syncer != nil {
		if err := a.syncer.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing remote mirror")
		}
	}
	if a.hub != nil {
		a.hub.Shutdown()
	}
	a.cancel()
}
