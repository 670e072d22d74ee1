package router

import (
	"github.com/gin-gonic/gin"
	"github.com/lotiva/backend/internal/interfaces/http/handler"
)

// ContractRoutes returns the /contracts route group
func ContractRoutes(h *handler.ContractHandler, mw ...gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("contracts", "/contracts").Use(mw...)
	g.POST("/generate", h.Generate)
	g.GET("/:saleId", h.GetHTML)
	g.GET("/:saleId/pdf", h.GetPDF)
	g.POST("/:saleId/email", h.SendEmail)
	g.POST("/:saleId/regenerate", h.Regenerate)
	return g
}

// SystemRoutes returns the /system route group
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.GetSystemInfo).
		GET("/health", h.Health)
}
