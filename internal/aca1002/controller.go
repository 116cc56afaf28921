package aca1002

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
	g := r.Group("/aca1002")
	g.POST("/queryList", webcrud.Handle(h.svc.QueryList))
	g.POST("/signList", webcrud.Handle(h.svc.SignList))
	g.POST("/goBack", webcrud.Handle(h.svc.GoBack))
	g.POST("/transPort", webcrud.Handle(h.svc.TransPort))
}
