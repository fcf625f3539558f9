package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/coaching-backend/internal/auth"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/response"
	"github.com/nekogravitycat/coaching-backend/internal/user"
)

var (
	errUnauthorized  = apperror.NewKind(http.StatusUnauthorized, apperror.KindUnauthorized, "unauthorized")
	errAdminRequired = apperror.NewKind(http.StatusForbidden, apperror.KindForbidden, "forbidden: system admin access required")
	errRoleRequired  = apperror.NewKind(http.StatusForbidden, apperror.KindForbidden, "forbidden: role not permitted")
)

// UserLookup loads the caller's current record for authorization checks.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// loadCaller aborts with 401 when the token subject no longer maps to an
// active user.
func loadCaller(c *gin.Context, users UserLookup) (*user.User, bool) {
	userID := auth.GetUserID(c)
	if userID == "" {
		response.Error(c, errUnauthorized)
		c.Abort()
		return nil, false
	}

	u, err := users.GetByID(c.Request.Context(), userID)
	if err != nil || !u.IsActive {
		response.Error(c, errUnauthorized)
		c.Abort()
		return nil, false
	}
	return u, true
}

// RequireSystemAdmin ensures the authenticated user is a system admin.
// It MUST be used after auth.AuthRequired middleware.
func RequireSystemAdmin(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := loadCaller(c, users)
		if !ok {
			return
		}
		if !u.IsSystemAdmin {
			response.Error(c, errAdminRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole lets through users holding one of roles. System admins always pass.
// It MUST be used after auth.AuthRequired middleware.
func RequireRole(users UserLookup, roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := loadCaller(c, users)
		if !ok {
			return
		}
		if !u.IsSystemAdmin && !slices.Contains(roles, u.Role) {
			response.Error(c, errRoleRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}
