package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/formloom/formloom-backend/internal/common"
	"github.com/formloom/formloom-backend/internal/domain"
	"github.com/formloom/formloom-backend/internal/middleware"
	"github.com/formloom/formloom-backend/internal/service"
	"github.com/formloom/formloom-backend/pkg/cache"
	"github.com/formloom/formloom-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// PresetHandler handles form preset API endpoints
type PresetHandler struct {
	service service.PresetService
	cache   cache.Service // nil when Redis is unavailable
}

// NewPresetHandler creates a new PresetHandler
func NewPresetHandler(svc service.PresetService, cacheService cache.Service) *PresetHandler {
	return &PresetHandler{service: svc, cache: cacheService}
}

// respondError maps domain errors to HTTP responses. Cross-tenant hits are
// answered exactly like a missing row so existence under another tenant is
// never revealed; the distinction survives in the logs.
func (h *PresetHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrTenantMismatch):
		logger.GetLogger().Warn().
			Str("tenant_id", middleware.GetTenantID(c)).
			Str("path", c.Request.URL.Path).
			Msg("cross-tenant access attempt")
		common.ErrorResponse(c, http.StatusNotFound, "Preset not found", nil)
	case errors.Is(err, common.ErrPresetNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Preset not found", nil)
	case errors.Is(err, common.ErrFormNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Form not found", nil)
	case errors.Is(err, common.ErrRevisionNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Preset revision not found", nil)
	case errors.Is(err, common.ErrSameVersion):
		common.ErrorResponse(c, http.StatusBadRequest, "Rollback target equals the current version", nil)
	case errors.Is(err, common.ErrVersionConflict):
		common.ErrorResponse(c, http.StatusConflict, "Preset was modified by another request, reload and retry", nil)
	case errors.Is(err, common.ErrImportTooLarge):
		common.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Import payload exceeds the size limit", nil)
	case errors.Is(err, common.ErrImportRevisionLimit):
		common.ErrorResponse(c, http.StatusUnprocessableEntity, "Import contains too many revisions", nil)
	case errors.Is(err, common.ErrInvalidImport):
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid import payload", nil)
	default:
		logger.GetLogger().Error().Err(err).
			Str("tenant_id", middleware.GetTenantID(c)).
			Str("path", c.Request.URL.Path).
			Msg("preset operation failed")
		common.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func parsePresetID(c *gin.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// Create handles POST /api/v1/presets
// @Summary Create a preset from a form
// @Description Snapshots a source form into a new named preset at version 1
// @Tags presets
// @Accept json
// @Produce json
// @Param request body domain.CreatePresetRequest true "Preset to create"
// @Success 201 {object} common.APIResponse{data=domain.FormPreset}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /presets [post]
func (h *PresetHandler) Create(c *gin.Context) {
	var req domain.CreatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	preset, err := h.service.CreateFromForm(middleware.GetTenantID(c), middleware.GetUserID(c), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.CreatedResponse(c, preset)
}

// List handles GET /api/v1/presets
// @Summary List presets
// @Tags presets
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Per page" default(20)
// @Success 200 {object} common.APIResponse{data=[]domain.FormPreset}
// @Security BearerAuth
// @Router /presets [get]
func (h *PresetHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	presets, total, err := h.service.List(middleware.GetTenantID(c), page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.SuccessWithMeta(c, presets, common.NewMeta(page, limit, total))
}

// Get handles GET /api/v1/presets/:id
// @Summary Get a preset with its revision history
// @Tags presets
// @Produce json
// @Param id path int true "Preset ID"
// @Success 200 {object} common.APIResponse{data=domain.PresetDetail}
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /presets/{id} [get]
func (h *PresetHandler) Get(c *gin.Context) {
	presetID, err := parsePresetID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid preset id", err)
		return
	}
	tenantID := middleware.GetTenantID(c)

	if h.cache != nil {
		var cached domain.PresetDetail
		if cacheErr := h.cache.GetPreset(c.Request.Context(), tenantID, presetID, &cached); cacheErr == nil {
			common.SuccessResponse(c, &cached)
			return
		}
	}

	detail, err := h.service.Get(tenantID, presetID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.cache != nil {
		_ = h.cache.SetPreset(c.Request.Context(), tenantID, presetID, detail)
	}
	common.SuccessResponse(c, detail)
}

// UpdateFromForm handles PUT /api/v1/presets/:id/form
// @Summary Re-snapshot a preset from its source form
// @Description Archives the current snapshot as a revision and installs a fresh one
// @Tags presets
// @Accept json
// @Produce json
// @Param id path int true "Preset ID"
// @Param request body domain.UpdatePresetSourceRequest true "Source form"
// @Success 200 {object} common.APIResponse{data=domain.PresetDetail}
// @Failure 404 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Security BearerAuth
// @Router /presets/{id}/form [put]
func (h *PresetHandler) UpdateFromForm(c *gin.Context) {
	presetID, err := parsePresetID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid preset id", err)
		return
	}

	var req domain.UpdatePresetSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tenantID := middleware.GetTenantID(c)
	detail, err := h.service.UpdateFromForm(tenantID, middleware.GetUserID(c), presetID, req.FormID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidate(c, tenantID, presetID)
	common.SuccessResponse(c, detail)
}

// Rollback handles POST /api/v1/presets/:id/rollback
// @Summary Roll a preset back to an archived version
// @Description Restores an archived snapshot as the live payload while advancing the version counter
// @Tags presets
// @Accept json
// @Produce json
// @Param id path int true "Preset ID"
// @Param request body domain.RollbackRequest true "Target version"
// @Success 200 {object} common.APIResponse{data=domain.PresetDetail}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Security BearerAuth
// @Router /presets/{id}/rollback [post]
func (h *PresetHandler) Rollback(c *gin.Context) {
	presetID, err := parsePresetID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid preset id", err)
		return
	}

	var req domain.RollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tenantID := middleware.GetTenantID(c)
	detail, err := h.service.Rollback(tenantID, middleware.GetUserID(c), presetID, req.Version)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidate(c, tenantID, presetID)
	common.SuccessResponse(c, detail)
}

// Export handles GET /api/v1/presets/:id/export
// @Summary Export a preset as a portable envelope
// @Description Point-in-time export; history is capped at the configured revision ceiling
// @Tags presets
// @Produce json
// @Param id path int true "Preset ID"
// @Param include_revisions query bool false "Include revision history"
// @Success 200 {object} domain.PresetEnvelope
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /presets/{id}/export [get]
func (h *PresetHandler) Export(c *gin.Context) {
	presetID, err := parsePresetID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid preset id", err)
		return
	}
	includeRevisions := c.Query("include_revisions") == "true"

	env, err := h.service.Export(middleware.GetTenantID(c), presetID, includeRevisions)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// The envelope itself is the payload, not wrapped in APIResponse,
	// so the exported document can be re-imported as-is.
	c.JSON(http.StatusOK, env)
}

// Import handles POST /api/v1/presets/import
// @Summary Import a preset envelope
// @Description Creates a brand-new preset under the importing tenant from an exported envelope
// @Tags presets
// @Accept json
// @Produce json
// @Success 201 {object} common.APIResponse{data=domain.ImportResult}
// @Failure 400 {object} common.APIResponse
// @Failure 413 {object} common.APIResponse
// @Failure 422 {object} common.APIResponse
// @Security BearerAuth
// @Router /presets/import [post]
func (h *PresetHandler) Import(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	result, err := h.service.Import(middleware.GetTenantID(c), middleware.GetUserID(c), raw)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.CreatedResponse(c, result)
}

// Delete handles DELETE /api/v1/presets/:id
// @Summary Delete a preset and all of its revisions
// @Tags presets
// @Produce json
// @Param id path int true "Preset ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /presets/{id} [delete]
func (h *PresetHandler) Delete(c *gin.Context) {
	presetID, err := parsePresetID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid preset id", err)
		return
	}

	tenantID := middleware.GetTenantID(c)
	if err := h.service.Delete(tenantID, presetID); err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidate(c, tenantID, presetID)
	common.SuccessResponse(c, gin.H{"deleted": presetID})
}

func (h *PresetHandler) invalidate(c *gin.Context, tenantID string, presetID uint64) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidatePreset(c.Request.Context(), tenantID, presetID); err != nil {
		logger.GetLogger().Warn().Err(err).
			Uint64("preset_id", presetID).
			Msg("preset cache invalidation failed")
	}
}
