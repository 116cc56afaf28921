package aca1001

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
	g := r.Group("/aca1001")
	g.POST("/queryList", webcrud.Handle(h.svc.QueryList))
	g.POST("/save", webcrud.Handle(h.svc.Save))
	g.POST("/erase", webcrud.Handle(h.svc.Erase))
	g.POST("/restore", webcrud.Handle(h.svc.Restore))
}
