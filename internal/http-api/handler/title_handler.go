package handler

import (
	"net/http"
	"strconv"

	"yamdb/internal/apperr"
	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	titleService service.TitleService
}

func NewTitleHandler(titleService service.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

// RegisterRoutes registers title routes
func (h *TitleHandler) RegisterRoutes(router *gin.RouterGroup) {
	titles := router.Group("/titles", middleware.Require(permission.AdminOrReadOnly))
	{
		titles.GET("", h.List)
		titles.POST("", h.Create)
		titles.GET("/:title_id", h.Get)
		titles.PATCH("/:title_id", h.Patch)
		titles.PUT("/:title_id", h.Replace)
		titles.DELETE("/:title_id", h.Delete)
	}
}

// List returns titles matching every given filter
// GET /api/v1/titles?name=&year=&genre=&category=
func (h *TitleHandler) List(c *gin.Context) {
	filter := repository.TitleFilter{
		Name:     c.Query("name"),
		Genre:    c.Query("genre"),
		Category: c.Query("category"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperr.Validation("year", "enter a whole number"))
			return
		}
		filter.Year = &year
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	titles, err := h.titleService.List(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelsToTitleResponses(titles))
}

// Get returns one title with its genres and category
// GET /api/v1/titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "title_id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	title, err := h.titleService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToTitleResponse(title))
}

// Create adds a title. Genres and category are referenced by slug.
// POST /api/v1/titles
func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	title, err := h.titleService.Create(ctx, titleInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromModelToTitleResponse(title))
}

// Patch updates only the fields present in the body
// PATCH /api/v1/titles/:title_id
func (h *TitleHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

// Replace overwrites the title; absent optional fields are cleared
// PUT /api/v1/titles/:title_id
func (h *TitleHandler) Replace(c *gin.Context) {
	h.update(c, false)
}

func (h *TitleHandler) update(c *gin.Context, partial bool) {
	id, ok := parseID(c, "title_id")
	if !ok {
		return
	}

	var req dto.TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	title, err := h.titleService.Update(ctx, id, titleInput(req), partial)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToTitleResponse(title))
}

// Delete removes a title with its reviews and comments
// DELETE /api/v1/titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "title_id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.titleService.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func titleInput(req dto.TitleRequest) service.TitleInput {
	return service.TitleInput{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Genres:      req.Genre,
		Category:    req.Category,
	}
}
