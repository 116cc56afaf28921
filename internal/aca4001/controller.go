package aca4001

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
	g := r.Group("/aca4001")
	g.POST("/queryList", webcrud.Handle(h.svc.QueryList))
	g.POST("/reassign", webcrud.Handle(h.svc.Reassign))
}
