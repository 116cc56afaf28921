package webcrud

import (
	"context"

	"github.com/axgrid/aftercare"
	"github.com/gin-gonic/gin"
)

// BindPayload читает конверт из тела, проверяет payload и проставляет
// пользователя и id запроса из контекста (их кладут middleware).
func BindPayload[T any](c *gin.Context) (aftercare.GeneralPayload[T], error) {
	var gp aftercare.GeneralPayload[T]
	if err := c.ShouldBindJSON(&gp); err != nil {
		return gp, aftercare.NewValidationError(aftercare.FieldError{Message: "malformed request body: " + err.Error()})
	}
	if err := aftercare.Check(gp.Payload); err != nil {
		return gp, err
	}
	ctx := c.Request.Context()
	gp.Actor = aftercare.ActorFrom(ctx)
	gp.RequestID = aftercare.RequestIDFrom(ctx)
	return gp, nil
}

// ServiceFn — форма любой операции сервиса.
type ServiceFn[P any, R any] func(ctx context.Context, in aftercare.GeneralPayload[P]) (aftercare.DataDto[R], error)

// Handle — тонкий контроллер: JSON -> GeneralPayload -> сервис -> DataDto.
func Handle[P any, R any](fn ServiceFn[P, R]) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := BindPayload[P](c)
		if err != nil {
			RespondError(c, err)
			return
		}
		out, err := fn(in.Context(c.Request.Context()), in)
		if err != nil {
			RespondError(c, err)
			return
		}
		Respond(c, out)
	}
}
