package middleware

import (
	"canteen-storefront/models"
	"canteen-storefront/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware attaches the device's auth container to the request.
func AuthMiddleware(auths *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := c.GetString(ContextDeviceID)
		if deviceID == "" {
			panic("middleware: AuthMiddleware requires SessionMiddleware")
		}
		c.Set(ContextAuth, auths.Session(c.Request.Context(), deviceID))
		c.Next()
	}
}

// RequireRoles applies Decide to the request. Pages are redirected; API
// calls get a JSON body carrying the redirect target.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, ok := c.MustGet(ContextAuth).(*services.Auth)
		if !ok {
			panic("middleware: RequireRoles requires AuthMiddleware")
		}

		decision := Decide(auth.Snapshot(), c.Request.URL.RequestURI(), roles)
		api := isAPIPath(c.Request.URL.Path)

		switch decision.Action {
		case ActionAllow:
			c.Next()
		case ActionLoading:
			c.Header("Retry-After", "1")
			if api {
				c.AbortWithStatusJSON(http.StatusAccepted, models.ErrorResponse{
					Success: false,
					Message: "Session is still loading",
				})
				return
			}
			c.Data(http.StatusAccepted, "text/html; charset=utf-8", []byte(loadingPage))
			c.Abort()
		case ActionRedirect:
			if !api {
				c.Redirect(http.StatusFound, decision.Target)
				c.Abort()
				return
			}
			status, message := http.StatusUnauthorized, "Authentication required"
			if decision.Forbidden {
				status, message = http.StatusForbidden, "You do not have access to this resource"
			}
			c.AbortWithStatusJSON(status, models.ErrorResponse{
				Success:  false,
				Message:  message,
				Redirect: decision.Target,
			})
		}
	}
}

// RequireAccount keeps guest sessions away from handlers that call the
// remote API with the session's token. It runs after RequireRoles.
func RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, ok := c.MustGet(ContextAuth).(*services.Auth)
		if !ok {
			panic("middleware: RequireAccount requires AuthMiddleware")
		}
		if !auth.Snapshot().IsGuest {
			c.Next()
			return
		}

		target := LoginTarget(c.Request.URL.RequestURI())
		if !isAPIPath(c.Request.URL.Path) {
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
			Success:  false,
			Message:  "Please sign in to an account to continue",
			Redirect: target,
		})
	}
}

const loadingPage = `<!DOCTYPE html>
<html><head><meta http-equiv="refresh" content="1"><title>Loading</title></head>
<body><p>Loading&hellip;</p></body></html>`
