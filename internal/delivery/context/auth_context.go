package context

import (
	"etwin/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// KeyAuthContext is the key for storing the caller identity in echo.Context.
const KeyAuthContext ContextKey = "auth_context"

// SetAuthContext stores the authenticated caller in echo.Context.
func SetAuthContext(c echo.Context, acx entity.AuthContext) {
	c.Set(string(KeyAuthContext), acx)
}

// GetAuthContext returns the caller stored by the auth middleware, or a guest
// when the request was not authenticated.
func GetAuthContext(c echo.Context) entity.AuthContext {
	if acx, ok := c.Get(string(KeyAuthContext)).(entity.AuthContext); ok && acx != nil {
		return acx
	}

	return entity.Guest()
}
