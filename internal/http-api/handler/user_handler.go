package handler

import (
	"net/http"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers the profile and user management routes
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Own profile, any authenticated user
	me := router.Group("/users/me", middleware.Require(permission.Authenticated))
	{
		me.GET("", h.Me)
		me.PATCH("", h.UpdateMe)
	}

	// Admin only
	users := router.Group("/users", middleware.Require(permission.AdminOnly))
	{
		users.GET("", h.List)
		users.POST("", h.Create)
		users.GET("/:username", h.Get)
		users.PATCH("/:username", h.Patch)
		users.PUT("/:username", h.Replace)
		users.DELETE("/:username", h.Delete)
	}
}

// Me returns the caller's profile
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(middleware.CurrentUser(c)))
}

// UpdateMe edits the caller's profile. Role changes by non-admins are ignored.
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UserPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.userService.UpdateMe(ctx, middleware.CurrentUser(c), userFields(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// List returns all users, optionally filtered by a username fragment
// GET /api/v1/users?search=
func (h *UserHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.userService.List(ctx, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelsToUserResponses(users))
}

// Create adds a user on behalf of an admin
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	patch := req.Patch()
	fields := userFields(patch)
	fields.Email = nil

	user, err := h.userService.CreateUser(ctx, req.Email, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromModelToUserResponse(user))
}

// Get returns one user by username
// GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// Patch partially updates a user
// PATCH /api/v1/users/:username
func (h *UserHandler) Patch(c *gin.Context) {
	var req dto.UserPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.update(c, req)
}

// Replace updates a user from a complete representation
// PUT /api/v1/users/:username
func (h *UserHandler) Replace(c *gin.Context) {
	var req dto.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.update(c, req.Patch())
}

func (h *UserHandler) update(c *gin.Context, req dto.UserPatchRequest) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.userService.AdminUpdate(ctx, c.Param("username"), userFields(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// Delete removes a user with their reviews and comments
// DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.userService.Delete(ctx, c.Param("username")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func userFields(req dto.UserPatchRequest) service.UserFields {
	return service.UserFields{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	}
}
