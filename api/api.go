package api

import (
	"github.com/gin-gonic/gin"

	migrator "github.com/shreyank-the-integrator/user-account-creation"
	"github.com/shreyank-the-integrator/user-account-creation/api/middleware"
	"github.com/shreyank-the-integrator/user-account-creation/config"
)

type Api struct {
	migrator *migrator.Migrator
	router   *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/migrations", a.RunMigration)
	router.POST("/migrations/export", a.ExportReport)
	return a.router
}

func NewAPI(m *migrator.Migrator) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{migrator: m, router: r}
}
