package middleware

import (
	"canteen-storefront/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "sid"
	DeviceCookie  = "did"

	ContextSessionID = "session_id"
	ContextDeviceID  = "device_id"
	ContextAuth      = "auth"
)

type CookieOptions struct {
	Secure    bool
	DeviceTTL time.Duration
}

// SessionMiddleware makes sure every request carries a browsing-session id
// and a device id. The session cookie has no Max-Age so it ends with the
// browser session; the device cookie outlives it.
func SessionMiddleware(signer *utils.TokenSigner, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)

		sessionID := readCookie(c, signer, SessionCookie, utils.KindSession)
		if sessionID == "" {
			sessionID = utils.NewID()
			token, err := signer.Generate(utils.KindSession, sessionID, 0)
			if err != nil {
				c.AbortWithError(http.StatusInternalServerError, err)
				return
			}
			c.SetCookie(SessionCookie, token, 0, "/", "", opts.Secure, true)
		}

		deviceID := readCookie(c, signer, DeviceCookie, utils.KindDevice)
		if deviceID == "" {
			deviceID = utils.NewID()
			token, err := signer.Generate(utils.KindDevice, deviceID, opts.DeviceTTL)
			if err != nil {
				c.AbortWithError(http.StatusInternalServerError, err)
				return
			}
			c.SetCookie(DeviceCookie, token, int(opts.DeviceTTL.Seconds()), "/", "", opts.Secure, true)
		}

		c.Set(ContextSessionID, sessionID)
		c.Set(ContextDeviceID, deviceID)
		c.Next()
	}
}

func readCookie(c *gin.Context, signer *utils.TokenSigner, name, kind string) string {
	raw, err := c.Cookie(name)
	if err != nil || raw == "" {
		return ""
	}
	id, err := signer.Validate(kind, raw)
	if err != nil {
		return ""
	}
	return id
}
