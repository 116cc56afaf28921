package webcrud

import (
	"errors"
	"net/http"

	"github.com/axgrid/aftercare"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HTTPStatus сопоставляет ошибки сервисов с HTTP-статусами.
func HTTPStatus(err error) int {
	var verr *aftercare.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr), errors.Is(err, aftercare.ErrInvalidPage),
		errors.Is(err, aftercare.ErrEmptySelection), errors.Is(err, aftercare.ErrEmptyPatch):
		return http.StatusBadRequest
	case errors.Is(err, aftercare.ErrPageNotFound), errors.Is(err, aftercare.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, aftercare.ErrInvalidState), errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// FailureOf строит конверт ошибки. Тексты внутренних ошибок наружу не отдаются.
func FailureOf(err error) aftercare.DataDto[aftercare.Void] {
	var verr *aftercare.ValidationError
	if errors.As(err, &verr) {
		return aftercare.Fail[aftercare.Void]("validation failed", verr.Fields...)
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return aftercare.Fail[aftercare.Void]("internal error")
	}
	return aftercare.Fail[aftercare.Void](err.Error())
}

func RespondError(c *gin.Context, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, FailureOf(err))
}

func Respond[T any](c *gin.Context, out aftercare.DataDto[T]) {
	c.JSON(http.StatusOK, out)
}
