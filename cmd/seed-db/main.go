// Command seed-db prepares a database for local development: it applies the
// schema, loads the menu, creates an admin account and optionally schedules
// sample events. Running it twice is safe.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/cafefusion/backend/internal/domain/event"
	"github.com/cafefusion/backend/internal/domain/menu"
	"github.com/cafefusion/backend/internal/domain/user"
	"github.com/cafefusion/backend/internal/storage/postgres"
)

type options struct {
	databaseURL   string
	menuFile      string
	adminEmail    string
	adminPassword string
	events        bool
}

func main() {
	var opts options
	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&opts.menuFile, "menu-file", "db/seed/menu.json", "path to menu JSON file, optionally gzip compressed (.gz)")
	flag.StringVar(&opts.adminEmail, "admin-email", "admin@cafe.local", "email of the seeded admin account")
	flag.StringVar(&opts.adminPassword, "admin-password", "", "admin password (or CAFE_SEED_ADMIN_PASSWORD env)")
	flag.BoolVar(&opts.events, "events", false, "schedule sample events when none are upcoming")
	flag.Parse()

	lg, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if opts.databaseURL == "" {
		opts.databaseURL = os.Getenv("DATABASE_URL")
	}
	if opts.databaseURL == "" {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}
	if opts.adminPassword == "" {
		opts.adminPassword = os.Getenv("CAFE_SEED_ADMIN_PASSWORD")
	}
	if opts.adminPassword == "" {
		lg.Fatal("Admin password is required: set --admin-password or CAFE_SEED_ADMIN_PASSWORD")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, opts); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}
	lg.Info("Seed completed")
}

func run(ctx context.Context, lg *zap.Logger, opts options) error {
	lg.Info("Connecting to database")
	pool, err := postgres.NewPool(ctx, opts.databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	lg.Info("Running migrations")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	items, err := readMenu(opts.menuFile)
	if err != nil {
		return errors.Wrap(err, "read menu")
	}
	if err := seedMenu(ctx, lg, menu.NewService(postgres.NewMenuRepository(pool)), items); err != nil {
		return errors.Wrap(err, "seed menu")
	}

	users := user.NewService(postgres.NewUserRepository(pool), nil)
	created, err := users.EnsureAdmin(ctx, user.Registration{
		FirstName: "Cafe",
		LastName:  "Admin",
		Email:     opts.adminEmail,
		Password:  opts.adminPassword,
	})
	if err != nil {
		return errors.Wrap(err, "seed admin")
	}
	lg.Info("Admin account", zap.String("email", opts.adminEmail), zap.Bool("created", created))

	if opts.events {
		if err := seedEvents(ctx, lg, event.NewService(postgres.NewEventRepository(pool), nil)); err != nil {
			return errors.Wrap(err, "seed events")
		}
	}
	return nil
}
