package v1

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/expvar"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	gql "github.com/gfdmit/web-forum/board-service/internal/handlers/http/v1/graphql"
	"github.com/gfdmit/web-forum/board-service/internal/handlers/http/v1/rest"
	"github.com/gfdmit/web-forum/board-service/internal/logger"
	"github.com/gfdmit/web-forum/board-service/internal/service"
)

// New builds the HTTP handler. staticDir is served for every unmatched GET;
// an empty or missing directory disables static serving.
func New(svc *service.Service, log *logrus.Logger, staticDir string) (*gin.Engine, error) {
	var (
		router = gin.New()
	)

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.WithField("panic", recovered).Error("[HTTPSERVER] handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
	}))
	router.Use(logger.Middleware(log))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300 * time.Second,
	}))

	gqlHandler, err := gql.New(svc, log)
	if err != nil {
		return nil, err
	}
	restHandler := rest.New(svc)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		apiGroup.GET("/posts", restHandler.ListPosts)
		apiGroup.POST("/posts", restHandler.CreatePost)
		apiGroup.POST("/posts/:id/comments", restHandler.AddComment)

		apiGroup.POST("/graphql", gin.WrapH(gqlHandler))
		apiGroup.GET("/debug/vars", expvar.Handler())
	}

	router.NoRoute(staticHandler(staticDir, log))

	return router, nil
}

func staticHandler(dir string, log *logrus.Logger) gin.HandlerFunc {
	var files http.Handler
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			files = http.FileServer(http.Dir(dir))
		} else {
			log.WithField("dir", dir).Warn("[HTTPSERVER] static directory not found, static serving disabled")
		}
	}

	return func(c *gin.Context) {
		method := c.Request.Method
		if files != nil && (method == http.MethodGet || method == http.MethodHead) {
			files.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
	}
}
