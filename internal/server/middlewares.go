package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/immocanvas/immocanvas/internal/config"
)

// AuthMiddleware resolves the authenticated user. Authentication
// itself happens upstream; the gateway forwards the user id in the
// X-User-Id header. Requests without a parsable id are rejected.
func (s *Server) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Request().Header.Get(config.HEADER_KEY_X_USER_ID)
		if raw == "" {
			return c.JSON(http.StatusUnauthorized, Res{
				Success: false,
				Message: "Missing user identity",
			})
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, Res{
				Success: false,
				Message: "Invalid user identity",
			})
		}

		ctx := context.WithValue(c.Request().Context(), config.CTX_KEY_USER_ID, userID)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

func userIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(config.CTX_KEY_USER_ID).(uuid.UUID)
	return id, ok
}
