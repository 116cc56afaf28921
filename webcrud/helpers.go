package webcrud

import (
	"github.com/gin-gonic/gin"
)

// RegisterLookup вешает на группу маршруты справочника только на чтение.
func RegisterLookup[T any, ID IDConstraint, DTO any](r gin.IRouter, repo Lookup[T, ID], tr TransformFn[T, DTO]) {
	r.GET("", GinGetList[T, ID, DTO](repo, tr))
	r.GET("/many", GinGetMany[T, ID, DTO](repo, tr))     // GET ids[]=...
	r.POST("/getMany", GinGetMany[T, ID, DTO](repo, tr)) // POST {ids:[]}
	r.GET("/:id", GinGetOne[T, ID, DTO](repo, tr))
}
