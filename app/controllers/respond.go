// Package controllers translates HTTP requests into service calls and
// domain errors into JSON responses.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/pkg/logger"
	"github.com/shashiranjanraj/enventory/pkg/response"
)

// fail maps a domain error onto the HTTP error taxonomy. Anything not in
// the taxonomy is a 500, logged with its cause but returned opaque.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		response.Unauthorized(w)
	case errors.Is(err, models.ErrInvalidCredential):
		response.Error(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, models.ErrForbidden):
		response.Forbidden(w, "Forbidden: insufficient role")
	case errors.Is(err, models.ErrProductNotFound):
		response.NotFound(w, "Product not found")
	case errors.Is(err, models.ErrOrderNotFound):
		response.NotFound(w, "Order not found")
	case errors.Is(err, models.ErrAccountNotFound):
		response.NotFound(w, "Account not found")
	case errors.Is(err, models.ErrValidation):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInsufficientStock):
		response.Error(w, http.StatusUnprocessableEntity, "Insufficient stock")
	case errors.Is(err, models.ErrConflict):
		response.Error(w, http.StatusConflict, err.Error())
	default:
		logger.WithCtx(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err.Error())
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
