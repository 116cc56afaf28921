package aca3001

import (
	"github.com/gin-gonic/gin"

	"github.com/axgrid/aftercare/webcrud"
)

type Controller struct {
	svc Service
}

func NewController(svc Service) *Controller {
	return &Controller{svc: svc}
}

func (h *Controller) Register(r gin.IRouter) {
	g := r.Group("/aca3001")
	g.POST("/compareAca", webcrud.Handle(h.svc.CompareAca))
	g.POST("/openCase", webcrud.Handle(h.svc.OpenCase))
}
