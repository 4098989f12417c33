package controllers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"invitationadmin/internal/delivery/http/helpers"
	"invitationadmin/internal/domain"
)

// CreateTemplateRequest is the request body for POST /admin/templates
type CreateTemplateRequest struct {
	Name            string               `json:"name" validate:"required,max=120"`
	Description     string               `json:"description" validate:"max=2000"`
	Category        domain.Category      `json:"category" validate:"required"`
	Style           domain.TemplateStyle `json:"style" validate:"required"`
	PreviewImageURL string               `json:"preview_image_url" validate:"omitempty,url"`
	Config          map[string]any       `json:"config"`
	IsPremium       bool                 `json:"is_premium"`
	Price           float64              `json:"price" validate:"min=0"`
	IsActive        *bool                `json:"is_active"`
}

// UpdateTemplateRequest is the request body for PATCH /admin/templates/{id}
type UpdateTemplateRequest struct {
	Name            *string               `json:"name" validate:"omitempty,max=120"`
	Description     *string               `json:"description" validate:"omitempty,max=2000"`
	Style           *domain.TemplateStyle `json:"style"`
	PreviewImageURL *string               `json:"preview_image_url" validate:"omitempty,url"`
	Config          map[string]any        `json:"config"`
	IsPremium       *bool                 `json:"is_premium"`
	Price           *float64              `json:"price" validate:"omitempty,min=0"`
	IsActive        *bool                 `json:"is_active"`
}

// TemplateController serves public template browsing and admin template management.
type TemplateController struct {
	Logger  *slog.Logger
	Service domain.TemplateService
}

func NewTemplateController(logger *slog.Logger, svc domain.TemplateService) *TemplateController {
	return &TemplateController{Logger: logger, Service: svc}
}

func (c *TemplateController) listActive(w http.ResponseWriter, r *http.Request, filter domain.TemplateFilter) {
	active := true
	filter.IsActive = &active
	c.list(w, r, filter)
}

func (c *TemplateController) list(w http.ResponseWriter, r *http.Request, filter domain.TemplateFilter) {
	params := helpers.ParsePagination(r)
	page, err := c.Service.List(r.Context(), filter, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONPage(w, page.Items, helpers.NewPaginationMeta(params, page.Total))
}

// List godoc
// @Summary Browse active templates
// @Tags templates
// @Produce json
// @Param category query string false "Category"
// @Param style query string false "Style"
// @Param is_premium query bool false "Premium only / free only"
// @Param search query string false "Matches name or description"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} helpers.APIResponse
// @Router /templates [get]
func (c *TemplateController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c.listActive(w, r, domain.TemplateFilter{
		Category:  domain.Category(q.Get("category")),
		Style:     domain.TemplateStyle(q.Get("style")),
		IsPremium: helpers.QueryBool(r, "is_premium"),
		Search:    q.Get("search"),
	})
}

// ByCategory godoc
// @Summary Browse active templates of one category
// @Tags templates
// @Produce json
// @Param category path string true "Category"
// @Success 200 {object} helpers.APIResponse
// @Router /templates/category/{category} [get]
func (c *TemplateController) ByCategory(w http.ResponseWriter, r *http.Request) {
	c.listActive(w, r, domain.TemplateFilter{Category: domain.Category(chi.URLParam(r, "category"))})
}

// Premium godoc
// @Summary Browse active premium templates
// @Tags templates
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /templates/premium [get]
func (c *TemplateController) Premium(w http.ResponseWriter, r *http.Request) {
	premium := true
	c.listActive(w, r, domain.TemplateFilter{IsPremium: &premium})
}

// Search godoc
// @Summary Search active templates
// @Tags templates
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse
// @Router /templates/search [get]
func (c *TemplateController) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "query parameter q is required")
		return
	}
	c.listActive(w, r, domain.TemplateFilter{Search: q})
}

// Popular godoc
// @Summary Most popular templates
// @Tags templates
// @Produce json
// @Param limit query int false "Number of templates (max 50)"
// @Success 200 {object} helpers.APIResponse
// @Router /templates/popular [get]
func (c *TemplateController) Popular(w http.ResponseWriter, r *http.Request) {
	items, err := c.Service.Popular(r.Context(), helpers.QueryInt(r, "limit", 0))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// Categories godoc
// @Summary Categories with active template counts
// @Tags templates
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /templates/categories [get]
func (c *TemplateController) Categories(w http.ResponseWriter, r *http.Request) {
	buckets, err := c.Service.CategoriesWithCounts(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, buckets)
}

// Styles godoc
// @Summary Styles with active template counts
// @Tags templates
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /templates/styles [get]
func (c *TemplateController) Styles(w http.ResponseWriter, r *http.Request) {
	buckets, err := c.Service.StylesWithCounts(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, buckets)
}

// Get godoc
// @Summary Get an active template
// @Tags templates
// @Produce json
// @Param id path string true "Template id"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /templates/{id} [get]
func (c *TemplateController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	t, err := c.Service.Get(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if !t.IsActive {
		helpers.WriteServiceError(w, r, c.Logger, domain.ErrNotFound)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, t)
}

// Related godoc
// @Summary Templates sharing a category or style
// @Tags templates
// @Produce json
// @Param id path string true "Template id"
// @Param limit query int false "Number of templates (max 50)"
// @Success 200 {object} helpers.APIResponse
// @Router /templates/{id}/related [get]
func (c *TemplateController) Related(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	items, err := c.Service.Related(r.Context(), id, helpers.QueryInt(r, "limit", 0))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// AdminList godoc
// @Summary List all templates, including inactive ones
// @Tags admin
// @Produce json
// @Param category query string false "Category"
// @Param style query string false "Style"
// @Param is_premium query bool false "Premium flag"
// @Param is_active query bool false "Active flag"
// @Param search query string false "Matches name or description"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/templates [get]
func (c *TemplateController) AdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c.list(w, r, domain.TemplateFilter{
		Category:  domain.Category(q.Get("category")),
		Style:     domain.TemplateStyle(q.Get("style")),
		IsPremium: helpers.QueryBool(r, "is_premium"),
		IsActive:  helpers.QueryBool(r, "is_active"),
		Search:    q.Get("search"),
	})
}

// AdminGet godoc
// @Summary Get any template
// @Tags admin
// @Produce json
// @Param id path string true "Template id"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/templates/{id} [get]
func (c *TemplateController) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	t, err := c.Service.Get(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, t)
}

// AdminCreate godoc
// @Summary Create a template
// @Tags admin
// @Accept json
// @Produce json
// @Param body body CreateTemplateRequest true "Template"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/templates [post]
func (c *TemplateController) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	t := &domain.Template{
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		Style:           req.Style,
		PreviewImageURL: req.PreviewImageURL,
		Config:          req.Config,
		IsPremium:       req.IsPremium,
		Price:           req.Price,
		IsActive:        true,
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if err := c.Service.Create(r.Context(), t); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, t)
}

// AdminUpdate godoc
// @Summary Update a template
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Template id"
// @Param body body UpdateTemplateRequest true "Changes"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/templates/{id} [patch]
func (c *TemplateController) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateTemplateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	t, err := c.Service.Update(r.Context(), id, domain.TemplatePatch{
		Name:            req.Name,
		Description:     req.Description,
		Style:           req.Style,
		PreviewImageURL: req.PreviewImageURL,
		Config:          req.Config,
		IsPremium:       req.IsPremium,
		Price:           req.Price,
		IsActive:        req.IsActive,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, t)
}

// AdminDelete godoc
// @Summary Delete a template
// @Tags admin
// @Param id path string true "Template id"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 409 {object} helpers.APIResponse "template is used by invitations"
// @Security AdminCookie
// @Router /admin/templates/{id} [delete]
func (c *TemplateController) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": id})
}

// AdminStats godoc
// @Summary Template statistics
// @Tags admin
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/templates/stats [get]
func (c *TemplateController) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Service.Stats(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}
