package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/cafefusion/backend/internal/domain/event"
)

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListUpcoming(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for i := range events {
			encodeEvent(e, &events[i])
		}
	})
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid event id")
		return
	}
	ev, err := h.events.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	var e jx.Encoder
	encodeEvent(&e, ev)
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var in event.Input
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			in.Name, err = d.Str()
		case "description":
			in.Description, err = d.Str()
		case "eventDateTime":
			var s string
			if s, err = d.Str(); err == nil {
				in.StartsAt, err = time.Parse(time.RFC3339, s)
			}
		case "coverCharge":
			in.CoverCharge, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		fail(w, r, err)
		return
	}

	ev, err := h.events.Create(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	var e jx.Encoder
	encodeEvent(&e, ev)
	writeJSON(w, http.StatusCreated, &e)
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid event id")
		return
	}
	if err := h.events.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
