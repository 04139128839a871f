package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/service"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// httpStatus maps service and repository errors to a status and a message
// that is safe to show to clients.
func httpStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, entity.ErrInvalidQuantity),
		errors.Is(err, entity.ErrEmptyProductID):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, service.ErrProductUnavailable):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, entity.ErrLineNotFound):
		return http.StatusNotFound, entity.ErrLineNotFound.Error()
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict, "already exists"
	case errors.Is(err, repository.ErrOptimisticLock):
		return http.StatusConflict, "cart was modified concurrently, please retry"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeServiceError(w http.ResponseWriter, log logger.Logger, op string, err error) {
	status, message := httpStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s failed: %v", op, err)
	} else {
		log.Warnf("%s rejected (%d): %v", op, status, err)
	}
	writeError(w, status, message)
}
