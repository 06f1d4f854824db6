package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/formloom/formloom-backend/internal/common"
	"github.com/formloom/formloom-backend/internal/domain"
	"github.com/formloom/formloom-backend/internal/middleware"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// FormHandler handles source-form API endpoints. The full editor lives in a
// separate product surface; this covers what the preset flow needs.
type FormHandler struct {
	forms repository.FormRepository
}

// NewFormHandler creates a new FormHandler
func NewFormHandler(forms repository.FormRepository) *FormHandler {
	return &FormHandler{forms: forms}
}

// Create handles POST /api/v1/forms
// @Summary Create a form with its fields
// @Tags forms
// @Accept json
// @Produce json
// @Param request body domain.CreateFormRequest true "Form to create"
// @Success 201 {object} common.APIResponse{data=domain.Form}
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /forms [post]
func (h *FormHandler) Create(c *gin.Context) {
	var req domain.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	form := &domain.Form{
		TenantID:    middleware.GetTenantID(c),
		Name:        req.Name,
		Description: req.Description,
		Config:      req.Config,
		Fields:      make([]domain.FormField, 0, len(req.Fields)),
	}
	for i, f := range req.Fields {
		active := true
		if f.IsActive != nil {
			active = *f.IsActive
		}
		position := f.Position
		if position == 0 {
			position = i
		}
		form.Fields = append(form.Fields, domain.FormField{
			FieldKey:    f.FieldKey,
			Label:       f.Label,
			FieldType:   f.FieldType,
			Placeholder: f.Placeholder,
			HelpText:    f.HelpText,
			IsRequired:  f.IsRequired,
			IsActive:    active,
			Position:    position,
			Config:      f.Config,
		})
	}

	if err := h.forms.Create(form); err != nil {
		logger.GetLogger().Error().Err(err).Msg("form creation failed")
		common.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	common.CreatedResponse(c, form)
}

// Get handles GET /api/v1/forms/:id
// @Summary Get a form with its fields
// @Tags forms
// @Produce json
// @Param id path int true "Form ID"
// @Success 200 {object} common.APIResponse{data=domain.Form}
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /forms/{id} [get]
func (h *FormHandler) Get(c *gin.Context) {
	formID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid form id", err)
		return
	}

	form, err := h.forms.FindWithFields(middleware.GetTenantID(c), formID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrFormNotFound), errors.Is(err, common.ErrTenantMismatch):
			common.ErrorResponse(c, http.StatusNotFound, "Form not found", nil)
		default:
			logger.GetLogger().Error().Err(err).Msg("form lookup failed")
			common.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
		}
		return
	}
	common.SuccessResponse(c, form)
}

// List handles GET /api/v1/forms
// @Summary List forms
// @Tags forms
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Per page" default(20)
// @Success 200 {object} common.APIResponse{data=[]domain.Form}
// @Security BearerAuth
// @Router /forms [get]
func (h *FormHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	forms, total, err := h.forms.List(middleware.GetTenantID(c), page, limit)
	if err != nil {
		logger.GetLogger().Error().Err(err).Msg("form listing failed")
		common.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	common.SuccessWithMeta(c, forms, common.NewMeta(page, limit, total))
}
