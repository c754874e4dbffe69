package main

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cafefusion/backend/internal/domain/event"
	"github.com/cafefusion/backend/internal/domain/menu"
)

// readMenu loads menu items from path. Files ending in .gz are decompressed.
func readMenu(path string) ([]menu.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}
	return decodeMenu(r)
}

func decodeMenu(r io.Reader) ([]menu.Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	var items []menu.Input
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		var in menu.Input
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "name":
				in.Name, err = d.Str()
			case "description":
				in.Description, err = d.Str()
			case "price":
				in.Price, err = decodePrice(d)
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		items = append(items, in)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode menu")
	}
	return items, nil
}

// decodePrice accepts both JSON numbers and numeric strings.
func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(s)
	}
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(n.String())
}

// MenuStore is the part of menu.Service used by seedMenu.
type MenuStore interface {
	List(ctx context.Context) ([]menu.Item, error)
	Create(ctx context.Context, in menu.Input) (*menu.Item, error)
	Update(ctx context.Context, id int64, in menu.Input) (*menu.Item, error)
}

// seedMenu creates items that are missing and refreshes the ones matched by
// name.
func seedMenu(ctx context.Context, lg *zap.Logger, store MenuStore, items []menu.Input) error {
	existing, err := store.List(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]int64, len(existing))
	for _, it := range existing {
		byName[strings.ToLower(it.Name)] = it.ID
	}

	lg.Info("Upserting menu items", zap.Int("count", len(items)))
	for _, in := range items {
		if id, ok := byName[strings.ToLower(strings.TrimSpace(in.Name))]; ok {
			if _, err := store.Update(ctx, id, in); err != nil {
				return errors.Wrapf(err, "update %q", in.Name)
			}
			lg.Debug("Updated menu item", zap.Int64("id", id), zap.String("name", in.Name))
			continue
		}
		it, err := store.Create(ctx, in)
		if err != nil {
			return errors.Wrapf(err, "create %q", in.Name)
		}
		byName[strings.ToLower(it.Name)] = it.ID
		lg.Debug("Created menu item", zap.Int64("id", it.ID), zap.String("name", it.Name))
	}
	return nil
}

// EventStore is the part of event.Service used by seedEvents.
type EventStore interface {
	ListUpcoming(ctx context.Context) ([]event.Event, error)
	Create(ctx context.Context, in event.Input) (*event.Event, error)
}

func sampleEvents(now time.Time) []event.Input {
	day := now.UTC().Truncate(24 * time.Hour)
	return []event.Input{
		{
			Name:        "Live Jazz Evening",
			Description: "Local trio playing standards",
			StartsAt:    day.AddDate(0, 0, 7).Add(19 * time.Hour),
			CoverCharge: decimal.RequireFromString("5.00"),
		},
		{
			Name:        "Latte Art Workshop",
			Description: "Hands-on session with our head barista",
			StartsAt:    day.AddDate(0, 0, 14).Add(10 * time.Hour),
			CoverCharge: decimal.RequireFromString("15.00"),
		},
		{
			Name:        "Open Mic Night",
			Description: "Poetry, music and comedy",
			StartsAt:    day.AddDate(0, 0, 21).Add(20 * time.Hour),
			CoverCharge: decimal.Zero,
		},
	}
}

// seedEvents schedules sample events unless some are already upcoming.
func seedEvents(ctx context.Context, lg *zap.Logger, store EventStore) error {
	upcoming, err := store.ListUpcoming(ctx)
	if err != nil {
		return err
	}
	if len(upcoming) > 0 {
		lg.Info("Events already scheduled, skipping", zap.Int("upcoming", len(upcoming)))
		return nil
	}
	for _, in := range sampleEvents(time.Now()) {
		ev, err := store.Create(ctx, in)
		if err != nil {
			return errors.Wrapf(err, "create %q", in.Name)
		}
		lg.Info("Scheduled event", zap.Int64("id", ev.ID), zap.String("name", ev.Name), zap.Time("starts_at", ev.StartsAt))
	}
	return nil
}
