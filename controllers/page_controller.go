package controllers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// PageController serves the single-page app shell for every page route.
// Routing inside the page happens in the browser once the guard lets the
// request through.
type PageController struct {
	StaticDir string
}

func (ctrl *PageController) Index(c *gin.Context) {
	index := filepath.Join(ctrl.StaticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fallbackPage))
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.File(index)
}

const fallbackPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Canteen</title></head>
<body><div id="root"></div><p>The storefront build is not installed.</p></body></html>`
