package report01

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/axgrid/aftercare/webcrud"
)

const BatchHeader = "X-Print-Batch"

type Controller struct {
	svc Service
}

func NewController(svc Service) *Controller {
	return &Controller{svc: svc}
}

func (h *Controller) Register(r gin.IRouter) {
	r.POST("/report01", h.print)
}

// print отдаёт файл как application/octet-stream, ошибки остаются в JSON-конверте.
func (h *Controller) print(c *gin.Context) {
	in, err := webcrud.BindPayload[Report01Payload](c)
	if err != nil {
		webcrud.RespondError(c, err)
		return
	}
	out, err := h.svc.Print(in.Context(c.Request.Context()), in)
	if err != nil {
		webcrud.RespondError(c, err)
		return
	}
	f := out.Data
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
	c.Header(BatchHeader, f.BatchID.String())
	c.Header("X-Row-Count", strconv.Itoa(f.Rows))
	c.Data(http.StatusOK, "application/octet-stream", f.Body)
}
