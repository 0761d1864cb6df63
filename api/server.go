// Package api exposes the storefront over HTTP: catalog, cart, checkout,
// order history, and the permission-gated admin surface.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hesham156/wafarle/pkg/auth"
	"github.com/hesham156/wafarle/pkg/cart"
	"github.com/hesham156/wafarle/pkg/checkout"
	"github.com/hesham156/wafarle/pkg/config"
	"github.com/hesham156/wafarle/pkg/repository"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionCookie = "wafarle_session"
	guestCookie   = "wafarle_guest"
	cookieMaxAge  = 30 * 24 * 60 * 60
)

type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *repository.RedisRepository
	mongo       *repository.MongoRepository
	auth        *auth.Service
	checkout    *checkout.Service
	broadcaster *cart.Broadcaster
	summaries   *summaryWatchers
	logger      *zap.Logger
	router      *gin.Engine
}

func NewServer(cfg *config.Config, db *gorm.DB, rdb *repository.RedisRepository, mongo *repository.MongoRepository,
	authSvc *auth.Service, checkoutSvc *checkout.Service, broadcaster *cart.Broadcaster, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Server{
		config:      cfg,
		db:          db,
		redis:       rdb,
		mongo:       mongo,
		auth:        authSvc,
		checkout:    checkoutSvc,
		broadcaster: broadcaster,
		summaries:   newSummaryWatchers(cfg.Cart.TaxRate, cfg.Cart.PollInterval, broadcaster, logger),
		logger:      logger,
		router:      router,
	}
}

func (s *Server) SetupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	v1.Use(s.sessionMiddleware())
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", s.register)
			authRoutes.POST("/login", s.login)
			authRoutes.POST("/logout", s.logout)
			authRoutes.GET("/me", s.requireAuth(), s.currentUser)
		}

		v1.GET("/products", s.listProducts)
		v1.GET("/products/:id", s.getProduct)
		v1.GET("/currencies", s.listCurrencies)

		cartRoutes := v1.Group("/cart")
		{
			cartRoutes.GET("", s.getCart)
			cartRoutes.GET("/summary", s.getCartSummary)
			cartRoutes.POST("/items", s.addToCart)
			cartRoutes.PUT("/items/:id", s.updateCartItem)
			cartRoutes.DELETE("/items/:id", s.removeCartItem)
			cartRoutes.DELETE("", s.clearCart)
		}

		v1.POST("/checkout", s.requireAuth(), s.placeOrder)
		orders := v1.Group("/orders", s.requireAuth())
		{
			orders.GET("", s.listOrders)
			orders.GET("/:id", s.getOrder)
		}

		admin := v1.Group("/admin", s.requireAuth())
		{
			admin.GET("/stats", s.requirePermission("view_analytics"), s.dashboardStats)
			admin.GET("/activity", s.requirePermission("view_analytics"), s.recentActivity)

			products := admin.Group("/products", s.requirePermission("manage_content"))
			{
				products.POST("", s.createProduct)
				products.PUT("/:id", s.updateProduct)
				products.DELETE("/:id", s.deleteProduct)
			}

			adminOrders := admin.Group("/orders", s.requirePermission("manage_content"))
			{
				adminOrders.GET("", s.listAllOrders)
				adminOrders.PUT("/:id/status", s.updateOrderStatus)
			}

			users := admin.Group("/users", s.requirePermission("manage_users"))
			{
				users.GET("", s.listUsers)
				users.PUT("/:id/role", s.updateUserRole)
			}

			settings := admin.Group("/settings", s.requirePermission("manage_content"))
			{
				settings.GET("", s.getSettings)
				settings.PUT("", s.updateSettings)
			}
		}
	}

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	// Log cart activity from all instances while the server runs.
	go s.watchCartActivity()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("Storefront API starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// Stop tears down the per-shopper summary watchers.
func (s *Server) Stop() {
	s.summaries.Stop()
}

// watchCartActivity subscribes to the cart broadcaster and logs every change
// signal, local or forwarded from another instance.
func (s *Server) watchCartActivity() {
	events, cancel := s.broadcaster.Subscribe()
	defer cancel()

	for ev := range events {
		s.logger.Debug("Cart changed",
			zap.String("owner", ev.Owner),
			zap.String("action", ev.Action),
			zap.Time("at", ev.At))
	}
}

// session pulls the resolved session from the request context, nil for
// guests.
func (s *Server) session(c *gin.Context) *repository.Session {
	v, ok := c.Get("session")
	if !ok {
		return nil
	}
	session, _ := v.(*repository.Session)
	return session
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// sessionMiddleware resolves the login session once per request from the
// bearer token or session cookie. Every downstream decision, including which
// cart backend serves the request, uses this single resolution.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(sessionCookie); err == nil {
				token = cookie
			}
		}
		if token != "" {
			session, err := s.auth.SessionFromToken(c.Request.Context(), token)
			if err == nil {
				c.Set("session", session)
			} else if err != auth.ErrSessionNotFound {
				s.logger.Warn("Session lookup failed", zap.Error(err))
			}
		}
		c.Next()
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.session(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func (s *Server) requirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.session(c)
		if session == nil || !auth.HasPermission(session.Role, permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

// guestID returns the guest cart id from the cookie, minting one on first
// use so an anonymous cart survives across requests.
func (s *Server) guestID(c *gin.Context) string {
	if id, err := c.Cookie(guestCookie); err == nil && id != "" {
		return id
	}
	id := newGuestID()
	c.SetCookie(guestCookie, id, cookieMaxAge, "/", "", false, true)
	return id
}
