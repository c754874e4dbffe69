// Package handler implements the REST API on top of the domain services.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cafefusion/backend/internal/domain/auth"
	"github.com/cafefusion/backend/internal/domain/event"
	"github.com/cafefusion/backend/internal/domain/menu"
	"github.com/cafefusion/backend/internal/domain/order"
	"github.com/cafefusion/backend/internal/domain/user"
	"github.com/cafefusion/backend/pkg/httpmiddleware"
)

// OrderService is the order lifecycle engine.
type OrderService interface {
	Create(ctx context.Context, requesterID int64, itemIDs []int64) (*order.Order, error)
	Get(ctx context.Context, orderID int64) (*order.Order, error)
	ListMine(ctx context.Context, requesterID int64) ([]order.Order, error)
	ListAll(ctx context.Context, page order.PageRequest) (*order.Page, error)
	ListByStatuses(ctx context.Context, statuses []order.Status, page order.PageRequest) (*order.Page, error)
	ListKitchenQueue(ctx context.Context, page order.PageRequest) (*order.Page, error)
	Statistics(ctx context.Context, start, end *time.Time) (map[order.Status]int64, error)
	UpdateStatus(ctx context.Context, orderID int64, to order.Status) (*order.Order, error)
	OverrideStatus(ctx context.Context, orderID int64, to order.Status) (*order.Order, error)
	Delete(ctx context.Context, orderID int64) error
}

// MenuService manages the catalog.
type MenuService interface {
	List(ctx context.Context) ([]menu.Item, error)
	Get(ctx context.Context, id int64) (*menu.Item, error)
	Create(ctx context.Context, in menu.Input) (*menu.Item, error)
	Update(ctx context.Context, id int64, in menu.Input) (*menu.Item, error)
	Delete(ctx context.Context, id int64) error
}

// EventService manages scheduled events.
type EventService interface {
	Create(ctx context.Context, in event.Input) (*event.Event, error)
	Get(ctx context.Context, id int64) (*event.Event, error)
	ListUpcoming(ctx context.Context) ([]event.Event, error)
	Delete(ctx context.Context, id int64) error
}

// UserService registers and authenticates users.
type UserService interface {
	Register(ctx context.Context, r user.Registration) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(raw string) (auth.Principal, error)
}

// Config holds the dependencies of a Handler.
type Config struct {
	Orders OrderService
	Menu   MenuService
	Events EventService
	Users  UserService
	Tokens TokenVerifier
	// LoginLimiter throttles POST /auth/login when set.
	LoginLimiter httpmiddleware.Middleware
}

// Handler serves /api/v1.
type Handler struct {
	orders       OrderService
	menu         MenuService
	events       EventService
	users        UserService
	tokens       TokenVerifier
	loginLimiter httpmiddleware.Middleware
}

// New creates a Handler.
func New(cfg Config) *Handler {
	return &Handler{
		orders:       cfg.Orders,
		menu:         cfg.Menu,
		events:       cfg.Events,
		users:        cfg.Users,
		tokens:       cfg.Tokens,
		loginLimiter: cfg.LoginLimiter,
	}
}

// Routes mounts the API under /api/v1 on a chi router. Extra routes such as
// health probes can be added by the caller through mount.
func (h *Handler) Routes(mount func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(httpmiddleware.LogRequests(), httpmiddleware.Labeler())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	if mount != nil {
		mount(r)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.With(h.limitLogin).Post("/login", h.login)
		})

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", h.listMenu)
			r.Get("/{id}", h.getMenuItem)
			r.Group(func(r chi.Router) {
				r.Use(h.authenticate, requireRole(auth.RoleAdmin))
				r.Post("/", h.createMenuItem)
				r.Put("/{id}", h.updateMenuItem)
				r.Delete("/{id}", h.deleteMenuItem)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.listEvents)
			r.Get("/{id}", h.getEvent)
			r.Group(func(r chi.Router) {
				r.Use(h.authenticate, requireRole(auth.RoleAdmin))
				r.Post("/", h.createEvent)
				r.Delete("/{id}", h.deleteEvent)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(h.authenticate)
			r.With(requireRole(auth.RoleUser)).Post("/", h.createOrder)
			r.Get("/me", h.listMyOrders)
			r.Get("/{id}", h.getOrder)
			r.Group(func(r chi.Router) {
				r.Use(requireRole(auth.RoleAdmin))
				r.Put("/{id}/status", h.overrideOrderStatus)
				r.Delete("/{id}", h.deleteOrder)
			})
		})

		r.Route("/admin/orders", func(r chi.Router) {
			r.Use(h.authenticate, requireRole(auth.RoleAdmin))
			r.Get("/", h.listAllOrders)
			r.Get("/filter", h.filterOrders)
			r.Get("/kitchen", h.kitchenQueue)
			r.Get("/stats", h.orderStats)
			r.Put("/{id}/status", h.updateOrderStatus)
		})
	})
	return r
}

func (h *Handler) limitLogin(next http.Handler) http.Handler {
	if h.loginLimiter == nil {
		return next
	}
	return h.loginLimiter(next)
}
