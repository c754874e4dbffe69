package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/cafefusion/backend/internal/domain/event"
	"github.com/cafefusion/backend/internal/domain/menu"
	"github.com/cafefusion/backend/internal/domain/order"
)

const maxBodySize = 1 << 20

var errBadJSON = errors.New("malformed JSON body")

func writeJSON(w http.ResponseWriter, code int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, code int, message string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(code) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
	writeJSON(w, code, &e)
}

// decodeObject reads a JSON object from the request body and calls field for
// every key. Unknown keys must be skipped by field.
func decodeObject(r *http.Request, field func(d *jx.Decoder, key string) error) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return errBadJSON
	}
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		return field(d, string(key))
	}); err != nil {
		return errors.Wrap(errBadJSON, err.Error())
	}
	return nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(n.String())
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(s)
	default:
		return decimal.Decimal{}, errors.New("expected number")
	}
}

func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.StringFixed(2)))
}

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339Nano))
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("orderId", func(e *jx.Encoder) { e.Int64(o.ID) })
		e.Field("userId", func(e *jx.Encoder) { e.Int64(o.OwnerID) })
		e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, o.CreatedAt) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("totalPrice", func(e *jx.Encoder) { encodeDecimal(e, o.Total) })
		e.Field("itemNames", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, name := range o.ItemNames() {
					e.Str(name)
				}
			})
		})
	})
}

func encodeOrders(e *jx.Encoder, orders []order.Order) {
	e.Arr(func(e *jx.Encoder) {
		for i := range orders {
			encodeOrder(e, &orders[i])
		}
	})
}

func encodePage(e *jx.Encoder, p *order.Page) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("content", func(e *jx.Encoder) { encodeOrders(e, p.Orders) })
		e.Field("page", func(e *jx.Encoder) { e.Int(p.Number) })
		e.Field("size", func(e *jx.Encoder) { e.Int(p.Size) })
		e.Field("totalElements", func(e *jx.Encoder) { e.Int64(p.Total) })
		e.Field("totalPages", func(e *jx.Encoder) { e.Int(p.TotalPages()) })
	})
}

func encodeMenuItem(e *jx.Encoder, it *menu.Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(it.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(it.Description) })
		e.Field("price", func(e *jx.Encoder) { encodeDecimal(e, it.Price) })
	})
}

func encodeEvent(e *jx.Encoder, ev *event.Event) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(ev.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(ev.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(ev.Description) })
		e.Field("eventDateTime", func(e *jx.Encoder) { encodeTime(e, ev.StartsAt) })
		e.Field("coverCharge", func(e *jx.Encoder) { encodeDecimal(e, ev.CoverCharge) })
	})
}
