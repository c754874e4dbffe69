package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/cafefusion/backend/internal/domain/menu"
)

func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for i := range items {
			encodeMenuItem(e, &items[i])
		}
	})
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) getMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid menu item id")
		return
	}
	it, err := h.menu.Get(r.Context(), id)
	h.writeMenuItem(w, r, http.StatusOK, it, err)
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	in, err := decodeMenuInput(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	it, err := h.menu.Create(r.Context(), in)
	h.writeMenuItem(w, r, http.StatusCreated, it, err)
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid menu item id")
		return
	}
	in, err := decodeMenuInput(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	it, err := h.menu.Update(r.Context(), id, in)
	h.writeMenuItem(w, r, http.StatusOK, it, err)
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid menu item id")
		return
	}
	if err := h.menu.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeMenuItem(w http.ResponseWriter, r *http.Request, code int, it *menu.Item, err error) {
	if err != nil {
		fail(w, r, err)
		return
	}
	var e jx.Encoder
	encodeMenuItem(&e, it)
	writeJSON(w, code, &e)
}

func decodeMenuInput(r *http.Request) (menu.Input, error) {
	var in menu.Input
	err := decodeObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			in.Name, err = d.Str()
		case "description":
			in.Description, err = d.Str()
		case "price":
			in.Price, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return in, err
}
