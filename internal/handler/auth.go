package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/cafefusion/backend/internal/domain/auth"
	"github.com/cafefusion/backend/internal/domain/user"
)

func writeToken(w http.ResponseWriter, code int, token string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("token", func(e *jx.Encoder) { e.Str(token) })
	})
	writeJSON(w, code, &e)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var (
		reg  user.Registration
		role string
	)
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "firstName":
			reg.FirstName, err = d.Str()
		case "lastName":
			reg.LastName, err = d.Str()
		case "email":
			reg.Email, err = d.Str()
		case "password":
			reg.Password, err = d.Str()
		case "role":
			role, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		fail(w, r, err)
		return
	}
	reg.Role = auth.RoleUser
	if role != "" {
		parsed, err := auth.ParseRole(role)
		if err != nil {
			badRequest(w, "role must be USER or ADMIN")
			return
		}
		reg.Role = parsed
	}

	token, err := h.users.Register(r.Context(), reg)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeToken(w, http.StatusCreated, token)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var email, password string
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "email":
			email, err = d.Str()
		case "password":
			password, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		fail(w, r, err)
		return
	}
	if email == "" || password == "" {
		badRequest(w, "email and password are required")
		return
	}

	token, err := h.users.Authenticate(r.Context(), email, password)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeToken(w, http.StatusOK, token)
}
