package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"github.com/sawgrasskings/booking-api/internal/appstate"
	"github.com/sawgrasskings/booking-api/internal/config"
	"github.com/sawgrasskings/booking-api/internal/desk"
	"github.com/sawgrasskings/booking-api/internal/domain/auth"
	"github.com/sawgrasskings/booking-api/internal/domain/barber"
	"github.com/sawgrasskings/booking-api/internal/domain/booking"
	"github.com/sawgrasskings/booking-api/internal/pkg/database"
	"github.com/sawgrasskings/booking-api/internal/pkg/jwt"
	"github.com/sawgrasskings/booking-api/internal/pkg/kvstore"
	"github.com/sawgrasskings/booking-api/internal/pkg/logger"
	"github.com/sawgrasskings/booking-api/internal/remote"
)

var CLI struct {
	Store    string `help:"Device store backend (file, redis, memory)." env:"STORE_BACKEND"`
	StoreDir string `help:"Directory of the file store." type:"path" env:"STORE_DIR"`
	Remote   string `help:"Remote mirror (none, http, firestore)." env:"REMOTE_MODE"`

	Slots    desk.SlotsCmd    `cmd:"" help:"Show the slots of a day."`
	Calendar desk.CalendarCmd `cmd:"" help:"Show a month of day states."`
	Book     desk.BookCmd     `cmd:"" help:"Submit a booking request."`
	Queue    struct {
		List    desk.QueueListCmd    `cmd:"" default:"1" help:"List requests."`
		Add     desk.QueueAddCmd     `cmd:"" help:"Queue a request by hand."`
		Confirm desk.QueueConfirmCmd `cmd:"" help:"Confirm a pending request."`
		Decline desk.QueueDeclineCmd `cmd:"" help:"Decline a pending request."`
		Remove  desk.QueueRemoveCmd  `cmd:"" help:"Remove a request from the queue and decline its booking."`
	} `cmd:"" help:"Work the booking queue."`
	Export  desk.ExportCmd `cmd:"" help:"Export bookings to a spreadsheet."`
	Dayoff  desk.DayOffCmd `cmd:"" help:"Mark a day off."`
	Block   desk.BlockCmd  `cmd:"" help:"Block or unblock a slot."`
	Clear   desk.ClearCmd  `cmd:"" help:"Clear all overrides of a day."`
	Barbers struct {
		List   desk.BarbersListCmd   `cmd:"" default:"1" help:"List barbers."`
		Add    desk.BarbersAddCmd    `cmd:"" help:"Add a barber."`
		Rename desk.BarbersRenameCmd `cmd:"" help:"Rename a barber."`
		Phone  desk.BarbersPhoneCmd  `cmd:"" help:"Set a barber's phone."`
		Pin    desk.BarbersPinCmd    `cmd:"" help:"Set a barber's passcode."`
		Toggle desk.BarbersToggleCmd `cmd:"" help:"Toggle whether a barber takes bookings."`
		Move   desk.BarbersMoveCmd   `cmd:"" help:"Move a barber up or down."`
		Delete desk.BarbersDeleteCmd `cmd:"" help:"Remove a barber."`
	} `cmd:"" help:"Manage the roster (admin)."`
	Unlock struct {
		Admin  desk.UnlockAdminCmd  `cmd:"" help:"Unlock the admin tools."`
		Barber desk.UnlockBarberCmd `cmd:"" help:"Unlock a barber's desk."`
	} `cmd:"" help:"Unlock the desk."`
	Lock      desk.LockCmd      `cmd:"" help:"Lock the desk."`
	Status    desk.StatusCmd    `cmd:"" help:"Show session, sync and queue status."`
	Reconnect desk.ReconnectCmd `cmd:"" help:"Retry the remote mirror."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("desk"),
		kong.Description("Front desk tools for the shop's booking state"),
		kong.UsageOnError(),
	)

	if err := run(kctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(kctx *kong.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if CLI.Store != "" {
		cfg.StoreBackend = CLI.Store
	}
	if CLI.StoreDir != "" {
		cfg.StoreDir = CLI.StoreDir
	}
	if CLI.Remote != "" {
		cfg.RemoteMode = CLI.Remote
	}

	logCloser, err := logger.Init(logger.Config{
		Level:       "warn",
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rdb, err := database.NewRedis(ctx, cfg.RedisURL, database.CLIRedis)
	if err != nil {
		return err
	}
	defer database.CloseRedis(rdb)

	kv, _, err := kvstore.Open(kvstore.Config{
		Backend: cfg.StoreBackend,
		Dir:     cfg.StoreDir,
		Redis:   rdb,
	})
	if err != nil {
		return err
	}
	defer kv.Close()

	store, err := appstate.Open(ctx, kv, cfg.Shop.Now)
	if err != nil {
		return fmt.Errorf("open app state: %w", err)
	}

	tracker := remote.NewTracker("remote mirror disabled")
	var syncer *remote.Syncer
	mirror, err := remote.NewMirror(ctx, remote.Config{
		Mode: cfg.RemoteMode,
		HTTP: remote.HTTPConfig{BaseURL: cfg.RemoteURL},
		Firestore: remote.FirestoreConfig{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsFile: cfg.FirebaseCredentialsFile,
		},
	})
	if err == nil {
		syncer = remote.NewSyncer(mirror, store, tracker)
		defer syncer.Close()
		store.SetRemote(syncer)
		startCtx, stop := context.WithTimeout(ctx, 10*time.Second)
		if err := syncer.Start(startCtx); err != nil {
			log.Warn().Err(err).Msg("Remote mirror unavailable, running local-only")
		}
		stop()
	} else if cfg.RemoteMode != remote.ModeNone {
		log.Warn().Err(err).Str("mode", cfg.RemoteMode).Msg("Remote mirror not started, running local-only")
	}

	gen, err := cfg.Shop.Generator()
	if err != nil {
		return err
	}
	barbers := barber.NewService(store)
	bookings := booking.NewService(store, barbers, booking.Config{
		Generator:    gen,
		MaxDaysAhead: cfg.Shop.MaxDaysAhead,
		Contact: booking.Contact{
			ShopName:  cfg.Shop.Name,
			PhoneE164: cfg.Shop.PhoneE164,
			Email:     cfg.Shop.Email,
		},
		Now: cfg.Shop.Now,
	})
	tokens := jwt.NewService(cfg.JWTSecret, cfg.SessionTTL)

	return kctx.Run(&desk.Context{
		Store:    store,
		Barbers:  barbers,
		Bookings: bookings,
		Auth:     auth.NewService(cfg.Shop.AdminPIN, barbers, tokens, store),
		Tracker:  tracker,
		Syncer:   syncer,
		Out:      os.Stdout,
		Ctx:      ctx,
	})
}
