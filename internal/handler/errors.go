package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/cafefusion/backend/internal/domain/event"
	"github.com/cafefusion/backend/internal/domain/menu"
	"github.com/cafefusion/backend/internal/domain/order"
	"github.com/cafefusion/backend/internal/domain/user"
)

// statusOf maps a domain error to an HTTP status and a client-safe message.
func statusOf(err error) (int, string) {
	var (
		itemErr       *order.ItemNotFoundError
		orderErr      *order.OrderNotFoundError
		transitionErr *order.InvalidStatusTransitionError
		menuInvalid   *menu.ValidationError
		eventInvalid  *event.ValidationError
		userInvalid   *user.ValidationError
	)
	switch {
	case errors.As(err, &itemErr):
		return http.StatusUnprocessableEntity, itemErr.Error()
	case errors.As(err, &orderErr):
		return http.StatusNotFound, orderErr.Error()
	case errors.As(err, &transitionErr):
		return http.StatusBadRequest, transitionErr.Error()
	case errors.As(err, &menuInvalid):
		return http.StatusBadRequest, menuInvalid.Reason
	case errors.As(err, &eventInvalid):
		return http.StatusBadRequest, eventInvalid.Reason
	case errors.As(err, &userInvalid):
		return http.StatusBadRequest, userInvalid.Reason
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrTooManyItems),
		errors.Is(err, order.ErrEmptyStatuses),
		errors.Is(err, order.ErrUnknownStatus),
		errors.Is(err, errBadJSON):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, menu.ErrNotFound), errors.Is(err, event.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, user.ErrEmailTaken):
		return http.StatusConflict, err.Error()
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// fail writes err as an API error. Unexpected errors are logged.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusOf(err)
	if code >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	}
	writeError(w, code, msg)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}
