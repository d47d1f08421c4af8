package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DioGolang/lifthub/internal/domain/entity"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// StatusFor maps a workflow error onto an HTTP status.
func StatusFor(err error) int {
	switch entity.KindOf(err) {
	case entity.KindValidation:
		return http.StatusBadRequest
	case entity.KindConflict:
		return http.StatusConflict
	case entity.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

var publicErrors = []error{
	entity.ErrCPFRequired,
	entity.ErrInvalidCPF,
	entity.ErrDuplicateCPF,
	entity.ErrStudentNotFound,
}

// PublicMessage returns the client-facing text for err. Internal errors are
// never exposed.
func PublicMessage(err error) string {
	for _, known := range publicErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal server error"
}
