package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/jx"

	"github.com/cafefusion/backend/internal/domain/order"
)

// parsePage reads page, size and sort=createdAt,asc|desc from the query.
func parsePage(r *http.Request, ascending bool) (order.PageRequest, string, bool) {
	q := r.URL.Query()
	p := order.PageRequest{Ascending: ascending}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, "page must be a non-negative integer", false
		}
		p.Number = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return p, "size must be a positive integer", false
		}
		p.Size = n
	}
	if v := q.Get("sort"); v != "" {
		field, dir, _ := strings.Cut(v, ",")
		if field != "createdAt" {
			return p, "orders can only be sorted by createdAt", false
		}
		switch strings.ToLower(dir) {
		case "":
		case "asc":
			p.Ascending = true
		case "desc":
			p.Ascending = false
		default:
			return p, "sort direction must be asc or desc", false
		}
	}
	return p.Normalize(), "", true
}

func (h *Handler) writePage(w http.ResponseWriter, r *http.Request, p *order.Page, err error) {
	if err != nil {
		fail(w, r, err)
		return
	}
	var e jx.Encoder
	encodePage(&e, p)
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	page, msg, ok := parsePage(r, false)
	if !ok {
		badRequest(w, msg)
		return
	}
	p, err := h.orders.ListAll(r.Context(), page)
	h.writePage(w, r, p, err)
}

func (h *Handler) filterOrders(w http.ResponseWriter, r *http.Request) {
	page, msg, ok := parsePage(r, false)
	if !ok {
		badRequest(w, msg)
		return
	}
	var statuses []order.Status
	for _, v := range r.URL.Query()["statuses"] {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			st, err := order.ParseStatus(part)
			if err != nil {
				fail(w, r, err)
				return
			}
			statuses = append(statuses, st)
		}
	}
	p, err := h.orders.ListByStatuses(r.Context(), statuses, page)
	h.writePage(w, r, p, err)
}

func (h *Handler) kitchenQueue(w http.ResponseWriter, r *http.Request) {
	// Oldest first so the kitchen works in arrival order.
	page, msg, ok := parsePage(r, true)
	if !ok {
		badRequest(w, msg)
		return
	}
	p, err := h.orders.ListKitchenQueue(r.Context(), page)
	h.writePage(w, r, p, err)
}

func parseInstant(r *http.Request, name string) (*time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func (h *Handler) orderStats(w http.ResponseWriter, r *http.Request) {
	start, ok := parseInstant(r, "start")
	if !ok {
		badRequest(w, "start must be an RFC 3339 timestamp")
		return
	}
	end, ok := parseInstant(r, "end")
	if !ok {
		badRequest(w, "end must be an RFC 3339 timestamp")
		return
	}
	if start != nil && end != nil && !end.After(*start) {
		badRequest(w, "end must be after start")
		return
	}

	stats, err := h.orders.Statistics(r.Context(), start, end)
	if err != nil {
		fail(w, r, err)
		return
	}
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		for _, st := range order.Statuses {
			e.Field(string(st), func(e *jx.Encoder) { e.Int64(stats[st]) })
		}
	})
	writeJSON(w, http.StatusOK, &e)
}
