package routes

import (
	"github.com/formloom/formloom-backend/internal/handler"
	"github.com/formloom/formloom-backend/internal/middleware"
	"github.com/formloom/formloom-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// Setup configures the v1 API routes
func Setup(router *gin.Engine, presetHandler *handler.PresetHandler, formHandler *handler.FormHandler, jwtManager *jwt.Manager, devMode bool) {
	api := router.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtManager), middleware.Tenant(devMode))

	// Forms (snapshot sources)
	forms := api.Group("/forms")
	forms.POST("", formHandler.Create)
	forms.GET("", formHandler.List)
	forms.GET("/:id", formHandler.Get)

	// Presets
	presets := api.Group("/presets")
	presets.POST("", presetHandler.Create)
	presets.GET("", presetHandler.List)
	presets.POST("/import", presetHandler.Import)
	presets.GET("/:id", presetHandler.Get)
	presets.PUT("/:id/form", presetHandler.UpdateFromForm)
	presets.POST("/:id/rollback", presetHandler.Rollback)
	presets.GET("/:id/export", presetHandler.Export)
	presets.DELETE("/:id", presetHandler.Delete)
}
