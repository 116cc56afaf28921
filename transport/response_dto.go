package transport

import (
	"encoding/json"
	"net/http"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/webcrud"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK[T any](w http.ResponseWriter, data T) {
	WriteJSON(w, http.StatusOK, aftercare.Ok(data))
}

// коды ошибок те же, что и у gin-контроллеров
func writeError(w http.ResponseWriter, err error) {
	WriteJSON(w, webcrud.HTTPStatus(err), webcrud.FailureOf(err))
}

func badRequest(field, msg string) error {
	return aftercare.NewValidationError(aftercare.FieldError{Field: field, Message: msg})
}
