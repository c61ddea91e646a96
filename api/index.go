package api

import (
	"canteen-storefront/config"
	"canteen-storefront/routes"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	app     *routes.App
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		cfg := config.LoadConfig()
		logger, err := config.NewLogger(cfg)
		if err != nil {
			logger = zap.NewNop()
		}

		app, initErr = routes.NewApp(cfg, logger)
		if initErr != nil {
			logger.Error("failed to initialise storefront", zap.Error(initErr))
		}
	})
}

// Handler is the serverless entry point. Idle sessions are not swept here;
// instances are short-lived.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	app.Router.ServeHTTP(w, r)
}
