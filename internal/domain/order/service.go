package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cafefusion/backend/internal/domain/menu"
)

// Service is the order lifecycle engine: it prices carts into orders,
// enforces the status workflow and answers the admin queries.
type Service struct {
	catalog       menu.Lookup
	orders        Store
	notifier      Notifier
	notifyTimeout time.Duration
	now           func() time.Time

	tracer      trace.Tracer
	created     metric.Int64Counter
	transitions metric.Int64Counter
	rejected    metric.Int64Counter
}

// NewService creates an order Service.
func NewService(catalog menu.Lookup, orders Store, opts ...Option) (*Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter(instrumentationName)
	s := &Service{
		catalog:       catalog,
		orders:        orders,
		notifier:      o.notifier,
		notifyTimeout: o.notifyTimeout,
		now:           o.now,
		tracer:        o.tracerProvider.Tracer(instrumentationName),
	}

	var err error
	if s.created, err = meter.Int64Counter("cafe.orders.created",
		metric.WithDescription("Orders placed"),
	); err != nil {
		return nil, errors.Wrap(err, "orders.created counter")
	}
	if s.transitions, err = meter.Int64Counter("cafe.orders.status_changes",
		metric.WithDescription("Committed order status changes"),
	); err != nil {
		return nil, errors.Wrap(err, "orders.status_changes counter")
	}
	if s.rejected, err = meter.Int64Counter("cafe.orders.rejected_transitions",
		metric.WithDescription("Status changes refused by the workflow"),
	); err != nil {
		return nil, errors.Wrap(err, "orders.rejected_transitions counter")
	}

	return s, nil
}

// Create prices itemIDs against the catalog and stores a new order owned by
// requesterID in StatusPendingApproval. Nothing is stored when an item
// cannot be resolved.
func (s *Service) Create(ctx context.Context, requesterID int64, itemIDs []int64) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Create", trace.WithAttributes(
		attribute.Int64("cafe.user_id", requesterID),
		attribute.Int("cafe.order.items", len(itemIDs)),
	))
	defer func() { finishSpan(span, rerr) }()

	lg := zctx.From(ctx)
	lg.Info("Creating order", zap.Int64("user_id", requesterID), zap.Int64s("menu_item_ids", itemIDs))

	pricing, err := Price(ctx, s.catalog, itemIDs)
	if err != nil {
		return nil, err
	}

	o := &Order{
		OwnerID:   requesterID,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
		Status:    StatusPendingApproval,
		Total:     pricing.Total,
		Items:     pricing.Items,
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, errors.Wrap(err, "save order")
	}
	s.created.Add(ctx, 1)

	lg.Info("Order created",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", requesterID),
		zap.Stringer("total", o.Total),
	)
	return o, nil
}

// Get returns a single order. Access control is the caller's concern.
func (s *Service) Get(ctx context.Context, orderID int64) (*Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &OrderNotFoundError{OrderID: orderID}
		}
		return nil, errors.Wrapf(err, "find order %d", orderID)
	}
	return o, nil
}

// ListMine returns the requester's orders, newest first.
func (s *Service) ListMine(ctx context.Context, requesterID int64) ([]Order, error) {
	orders, err := s.orders.FindByOwner(ctx, requesterID)
	if err != nil {
		return nil, errors.Wrapf(err, "find orders of user %d", requesterID)
	}
	return orders, nil
}

// ListAll returns one page of every order.
func (s *Service) ListAll(ctx context.Context, page PageRequest) (*Page, error) {
	p, err := s.orders.FindAll(ctx, page.Normalize())
	if err != nil {
		return nil, errors.Wrap(err, "find orders")
	}
	return p, nil
}

// ListByStatuses returns one page of orders whose status is in statuses.
func (s *Service) ListByStatuses(ctx context.Context, statuses []Status, page PageRequest) (*Page, error) {
	if len(statuses) == 0 {
		return nil, ErrEmptyStatuses
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, errors.Wrapf(ErrUnknownStatus, "%q", st)
		}
	}

	p, err := s.orders.FindByStatusIn(ctx, statuses, page.Normalize())
	if err != nil {
		return nil, errors.Wrap(err, "find orders by status")
	}
	return p, nil
}

// ListKitchenQueue returns orders being prepared or waiting for pickup.
func (s *Service) ListKitchenQueue(ctx context.Context, page PageRequest) (*Page, error) {
	return s.ListByStatuses(ctx, KitchenStatuses, page)
}

// Statistics counts orders per status. When both start and end are set,
// only orders created in [start, end) are counted. Every status is present
// in the result.
func (s *Service) Statistics(ctx context.Context, start, end *time.Time) (map[Status]int64, error) {
	ranged := start != nil && end != nil
	counts := make([]int64, len(Statuses))

	g, gctx := errgroup.WithContext(ctx)
	for i, st := range Statuses {
		g.Go(func() error {
			var (
				n   int64
				err error
			)
			if ranged {
				n, err = s.orders.CountByStatusInRange(gctx, st, *start, *end)
			} else {
				n, err = s.orders.CountByStatus(gctx, st)
			}
			if err != nil {
				return errors.Wrapf(err, "count %s orders", st)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := make(map[Status]int64, len(Statuses))
	for i, st := range Statuses {
		stats[st] = counts[i]
	}
	return stats, nil
}

// UpdateStatus moves an order to the given status if the workflow allows it.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, to Status) (*Order, error) {
	return s.changeStatus(ctx, orderID, to, false)
}

// OverrideStatus sets the status without consulting the workflow. It is an
// administrative escape hatch: it can move an order backwards or out of a
// terminal state. Use UpdateStatus for regular fulfilment.
func (s *Service) OverrideStatus(ctx context.Context, orderID int64, to Status) (*Order, error) {
	return s.changeStatus(ctx, orderID, to, true)
}

func (s *Service) changeStatus(ctx context.Context, orderID int64, to Status, override bool) (_ *Order, rerr error) {
	if !to.Valid() {
		return nil, errors.Wrapf(ErrUnknownStatus, "%q", to)
	}

	ctx, span := s.tracer.Start(ctx, "order.ChangeStatus", trace.WithAttributes(
		attribute.Int64("cafe.order.id", orderID),
		attribute.String("cafe.order.status", string(to)),
		attribute.Bool("cafe.order.override", override),
	))
	defer func() { finishSpan(span, rerr) }()

	var from Status
	o, err := s.orders.UpdateStatus(ctx, orderID, func(current Status) (Status, error) {
		from = current
		if !override && !CanTransition(current, to) {
			return "", &InvalidStatusTransitionError{From: current, To: to}
		}
		return to, nil
	})
	if err != nil {
		var transitionErr *InvalidStatusTransitionError
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, &OrderNotFoundError{OrderID: orderID}
		case errors.As(err, &transitionErr):
			s.rejected.Add(ctx, 1, metric.WithAttributes(
				attribute.String("from", string(transitionErr.From)),
				attribute.String("to", string(transitionErr.To)),
			))
			return nil, transitionErr
		}
		return nil, errors.Wrapf(err, "update order %d status", orderID)
	}

	s.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
		attribute.Bool("override", override),
	))

	lg := zctx.From(ctx).With(
		zap.Int64("order_id", orderID),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
	if override {
		lg.Warn("Order status overridden without workflow check")
	} else {
		lg.Info("Order status updated")
	}

	s.notify(ctx, StatusChange{
		OrderID:   o.ID,
		OwnerID:   o.OwnerID,
		From:      from,
		To:        to,
		ChangedAt: s.now().UTC(),
		Override:  override,
	})
	return o, nil
}

// Delete removes an order regardless of its status.
func (s *Service) Delete(ctx context.Context, orderID int64) error {
	exists, err := s.orders.ExistsByID(ctx, orderID)
	if err != nil {
		return errors.Wrapf(err, "check order %d", orderID)
	}
	if !exists {
		return &OrderNotFoundError{OrderID: orderID}
	}

	if err := s.orders.DeleteByID(ctx, orderID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &OrderNotFoundError{OrderID: orderID}
		}
		return errors.Wrapf(err, "delete order %d", orderID)
	}

	zctx.From(ctx).Info("Order deleted", zap.Int64("order_id", orderID))
	return nil
}

// notify reports a committed change. The change is already stored, so a
// failed delivery is logged rather than returned.
func (s *Service) notify(ctx context.Context, change StatusChange) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	if err := s.notifier.OrderStatusChanged(ctx, change); err != nil {
		zctx.From(ctx).Warn("Failed to publish order status change",
			zap.Int64("order_id", change.OrderID),
			zap.Error(err),
		)
	}
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
