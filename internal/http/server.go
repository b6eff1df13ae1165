package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/graphql-go"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	gqlapi "github.com/pabloleguizamon/dragon-challenge/internal/graphql"
	"github.com/pabloleguizamon/dragon-challenge/internal/repository"
	"github.com/pabloleguizamon/dragon-challenge/internal/service"
)

// Options configure the HTTP server. Schema and Health are optional.
type Options struct {
	CORSOrigin string
	Schema     *graphql.Schema
	Health     repository.Pinger
	Logger     *slog.Logger
}

type Server struct {
	engine *gin.Engine
	svc    service.Services
	health repository.Pinger
	log    *slog.Logger
}

func NewServer(svc service.Services, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), cors.New(corsConfig(opts.CORSOrigin)))
	s := &Server{engine: r, svc: svc, health: opts.Health, log: log}
	s.registerRoutes(opts.Schema)
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func corsConfig(origin string) cors.Config {
	cfg := cors.DefaultConfig()
	if origin == "" || origin == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = []string{origin}
		cfg.AllowCredentials = true
	}
	cfg.AddAllowHeaders("Authorization")
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

func (s *Server) registerRoutes(schema *graphql.Schema) {
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/healthz", s.healthz)

	if schema != nil {
		s.engine.POST("/graphql", s.identify, gin.WrapH(gqlapi.Handler(schema)))
	}

	v1 := s.engine.Group("/api/v1", s.identify)
	{
		authGroup := v1.Group("/auth")
		authGroup.POST("/register", s.register)
		authGroup.POST("/login", s.login)

		products := v1.Group("/products")
		products.GET("", s.listProducts)
		products.GET(":id", s.getProduct)
		products.POST("", s.requireAuth, s.createProduct)
		products.PUT(":id", s.requireAuth, s.updateProduct)
		products.DELETE(":id", s.requireAuth, s.deleteProduct)

		orders := v1.Group("/orders", s.requireAuth)
		orders.POST("", s.createOrder)
		orders.GET("", s.listOrders)
		orders.GET("/mine", s.myOrders)
		orders.GET(":id", s.getOrder)
		orders.PATCH(":id/status", s.updateOrderStatus)
		orders.POST(":id/cancel", s.cancelOrder)

		users := v1.Group("/users", s.requireAuth)
		users.GET("", s.listUsers)
		users.GET(":id", s.getUser)
		users.GET(":id/orders", s.userOrders)
	}
}

// healthz reports 503 when the store does not answer a ping.
func (s *Server) healthz(c *gin.Context) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.log.WarnContext(ctx, "health check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
