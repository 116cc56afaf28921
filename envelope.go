package aftercare

import "context"

// GeneralPayload — входной конверт. Payload приходит из JSON, Actor и RequestID
// проставляет транспорт и в тело не сериализуются.
type GeneralPayload[T any] struct {
	Payload T            `json:"payload"`
	Page    *PagePayload `json:"page,omitempty"`

	Actor     string `json:"-"`
	RequestID string `json:"-"`
}

func NewGeneralPayload[T any](payload T) GeneralPayload[T] {
	return GeneralPayload[T]{Payload: payload}
}

// Context — единственное место, где пользователь запроса попадает в контекст
// для аудит-полей репозиториев.
func (g GeneralPayload[T]) Context(ctx context.Context) context.Context {
	if g.Actor != "" {
		ctx = WithActor(ctx, g.Actor)
	}
	if g.RequestID != "" {
		ctx = WithRequestID(ctx, g.RequestID)
	}
	return ctx
}

// Void — результат операций, которым нечего вернуть.
type Void struct{}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DataDto — выходной конверт.
type DataDto[T any] struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    T            `json:"data"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func Ok[T any](data T) DataDto[T] {
	return DataDto[T]{Success: true, Data: data}
}

func OkMsg[T any](data T, msg string) DataDto[T] {
	return DataDto[T]{Success: true, Message: msg, Data: data}
}

func Fail[T any](msg string, errs ...FieldError) DataDto[T] {
	return DataDto[T]{Success: false, Message: msg, Errors: errs}
}

// Affected — тело ответа массовых операций.
type Affected struct {
	Count int64 `json:"count"`
}
