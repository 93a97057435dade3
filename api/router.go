// Package api is the HTTP surface of the content workflows.
package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"polycode/content-agent/lib"
	"polycode/content-agent/services/content_service"
)

const Banner = "Content Agent API"

var validatorOnce sync.Once

// UseValidator makes gin bind request bodies with the shared `validate`
// rules. It replaces gin's package-level validator once per process and
// must run before the router serves requests.
func UseValidator() {
	validatorOnce.Do(func() {
		binding.Validator = lib.NewValidator()
	})
}

func NewRouter(svc *content_service.Service, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = lib.DiscardLogger()
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = append(config.AllowHeaders, RequestIDHeader)
	config.ExposeHeaders = append(config.ExposeHeaders, RequestIDHeader)
	r.Use(cors.New(config))

	h := &handler{svc: svc, logger: logger}
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": Banner})
	})
	r.POST("/from-file", h.fromFile)
	r.POST("/from-file-with-outline", h.fromFileWithOutline)
	r.POST("/create-outline-only", h.createOutlineOnly)
	r.POST("/from-web", h.fromWeb)
	return r
}
