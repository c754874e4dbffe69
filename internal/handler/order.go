package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/cafefusion/backend/internal/domain/order"
)

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var (
		itemIDs []int64
		seen    bool
	)
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		if key != "menuItemIds" {
			return d.Skip()
		}
		seen = true
		if d.Next() == jx.Null {
			return d.Null()
		}
		return d.Arr(func(d *jx.Decoder) error {
			id, err := d.Int64()
			if err != nil {
				return err
			}
			itemIDs = append(itemIDs, id)
			return nil
		})
	}); err != nil {
		fail(w, r, err)
		return
	}
	if !seen || len(itemIDs) == 0 {
		fail(w, r, order.ErrEmptyItems)
		return
	}

	o, err := h.orders.Create(r.Context(), principal(r).UserID, itemIDs)
	if err != nil {
		fail(w, r, err)
		return
	}
	var e jx.Encoder
	encodeOrder(&e, o)
	writeJSON(w, http.StatusCreated, &e)
}

func (h *Handler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListMine(r.Context(), principal(r).UserID)
	if err != nil {
		fail(w, r, err)
		return
	}
	var e jx.Encoder
	encodeOrders(&e, orders)
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid order id")
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	// Other users' orders are reported as missing.
	if p := principal(r); !p.IsAdmin() && o.OwnerID != p.UserID {
		fail(w, r, &order.OrderNotFoundError{OrderID: id})
		return
	}
	var e jx.Encoder
	encodeOrder(&e, o)
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid order id")
		return
	}
	if err := h.orders.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.orders.UpdateStatus)
}

func (h *Handler) overrideOrderStatus(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.orders.OverrideStatus)
}

type statusFunc func(ctx context.Context, orderID int64, to order.Status) (*order.Order, error)

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request, apply statusFunc) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid order id")
		return
	}
	to, err := decodeNewStatus(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	o, err := apply(r.Context(), id, to)
	if err != nil {
		fail(w, r, err)
		return
	}
	var e jx.Encoder
	encodeOrder(&e, o)
	writeJSON(w, http.StatusOK, &e)
}

func decodeNewStatus(r *http.Request) (order.Status, error) {
	var raw string
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		if key != "newStatus" {
			return d.Skip()
		}
		s, err := d.Str()
		raw = s
		return err
	}); err != nil {
		return "", err
	}
	if raw == "" {
		return "", errors.Wrap(order.ErrUnknownStatus, "newStatus is required")
	}
	return order.ParseStatus(raw)
}
