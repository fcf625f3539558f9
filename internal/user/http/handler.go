package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/coaching-backend/internal/auth"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/request"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/response"
	"github.com/nekogravitycat/coaching-backend/internal/user"
)

type UserHandler struct {
	userService user.Service
	jwtManager  *auth.JWTManager
}

func NewHandler(userService user.Service, jwtManager *auth.JWTManager) *UserHandler {
	return &UserHandler{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// issueToken signs an access token for u and writes the auth response.
func (h *UserHandler) issueToken(c *gin.Context, status int, u *user.User) {
	token, err := h.jwtManager.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(status, AuthResponse{
		AccessToken: token,
		User:        NewUserResponse(u),
	})
}

// Register creates an account and signs the new user in immediately.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	u, err := h.userService.Register(c.Request.Context(), user.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     user.Role(req.Role),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.issueToken(c, http.StatusCreated, u)
}

// Login authenticates a user using email and password.
// On success, it returns a JWT access token and the user profile.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	u, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInactiveUser) {
			// Do not reveal which condition failed.
			err = user.ErrInvalidCredentials
		}
		response.Error(c, err)
		return
	}

	h.issueToken(c, http.StatusOK, u)
}

// Me retrieves the profile of the currently authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.userService.GetByID(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}

// List retrieves a paginated list of users with optional filtering.
// Access Control: System Admin only.
func (h *UserHandler) List(c *gin.Context) {
	var req ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	filter := user.Filter{
		Email:     req.Email,
		Name:      req.Name,
		Role:      user.Role(req.Role),
		IsActive:  req.IsActive,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: strings.ToUpper(req.SortOrder),
	}

	users, total, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = NewUserResponse(u)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

// Get retrieves a specific user by their ID.
func (h *UserHandler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}

// GetByEmail looks a user up by exact (case-insensitive) email.
func (h *UserHandler) GetByEmail(c *gin.Context) {
	u, err := h.userService.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}

// GetByName returns the first user whose name contains the given text.
func (h *UserHandler) GetByName(c *gin.Context) {
	users, err := h.userService.FindByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(users) == 0 {
		response.Error(c, user.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(users[0])})
}

// Update modifies a user. Users may edit their own profile; admins may edit anyone
// and are the only ones allowed to toggle activation or admin rights.
func (h *UserHandler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body", err)
		return
	}

	isAdmin, err := h.callerIsAdmin(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !isAdmin && (auth.GetUserID(c) != uri.ID || body.AdminOnly()) {
		response.Error(c, user.ErrPermissionDenied)
		return
	}

	req := user.UpdateRequest{
		Name:          body.Name,
		Email:         body.Email,
		IsActive:      body.IsActive,
		IsSystemAdmin: body.IsSystemAdmin,
	}
	if body.Role != nil {
		role := user.Role(*body.Role)
		req.Role = &role
	}

	u, err := h.userService.Update(c.Request.Context(), uri.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}

// Delete performs a soft delete on a user (self or admin).
func (h *UserHandler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	isAdmin, err := h.callerIsAdmin(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !isAdmin && auth.GetUserID(c) != req.ID {
		response.Error(c, user.ErrPermissionDenied)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) callerIsAdmin(c *gin.Context) (bool, error) {
	caller, err := h.userService.GetByID(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		return false, err
	}
	return caller.IsSystemAdmin, nil
}
