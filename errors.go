package aftercare

import "errors"

var (
	ErrInvalidPage    = errors.New("invalid page payload")
	ErrPageNotFound   = errors.New("page does not exist")
	ErrNotFound       = errors.New("record not found")
	ErrEmptyPatch     = errors.New("empty patch")
	ErrEmptySelection = errors.New("no records selected")
	ErrInvalidState   = errors.New("record is not in the required state")
)

// ValidationError — ошибки входных данных по полям; транспорт отдаёт их как 400.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	f := e.Fields[0]
	if f.Field == "" {
		return "validation failed: " + f.Message
	}
	return "validation failed: " + f.Field + " " + f.Message
}

func NewValidationError(fields ...FieldError) error {
	return &ValidationError{Fields: fields}
}

// Check — Validate, завёрнутый в error.
func Check(v any) error {
	if errs := Validate(v); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
