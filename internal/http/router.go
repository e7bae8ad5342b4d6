package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Copy the session identity into the gin context on every request
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.LoadIdentity())
	}

	tmpl := template.Must(template.ParseGlob(cfg.TemplatesPath + "/*.html"))
	router.SetHTMLTemplate(tmpl)

	router.Static("/static", cfg.StaticPath)
	if cfg.Uploads != nil {
		router.Static("/images", cfg.Uploads.Dir())
	}

	health := NewHealthController(cfg.Database, cfg.Uploads.Dir(), cfg.Version)
	catalog := NewCatalogController(cfg.Books, cfg.Reviews)
	borrowCtrl := NewBorrowController(cfg.Books, cfg.Borrow)
	dashboard := NewDashboardController(cfg.Requests, cfg.Reading, cfg.AuthService)
	reading := NewReadingListController(cfg.Reading)
	reviewsCtrl := NewReviewsController(cfg.Books, cfg.Reviews, cfg.Uploads)
	admin := NewAdminController(cfg.Requests, cfg.Borrow)
	booksAdmin := NewBooksAdminController(cfg.Books, cfg.Uploads, cfg.Auditor)
	auditCtrl := NewAuditController(cfg.Auditor)
	authCtrl := NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.Uploads, cfg.Auditor, cfg.AuthConfig)

	// Public pages
	router.GET("/", catalog.Index)
	router.GET("/books/:id", catalog.Detail)
	router.GET("/login", authCtrl.LoginPage)
	router.POST("/login", authCtrl.Login)
	router.GET("/register", authCtrl.RegisterPage)
	router.POST("/register", authCtrl.Register)
	router.POST("/logout", authCtrl.Logout)
	router.GET("/logout", authCtrl.Logout) // Support GET for simple logout links
	router.GET("/health", health.Status)

	// Member pages
	member := router.Group("")
	if cfg.AuthMiddleware != nil {
		member.Use(cfg.AuthMiddleware.RequireAuth())
	}
	member.GET("/dashboard", dashboard.Page)
	member.GET("/books/:id/borrow", borrowCtrl.Form)
	member.POST("/books/:id/borrow", borrowCtrl.Submit)
	member.POST("/requests/:id/cancel", borrowCtrl.Cancel)
	member.GET("/books/:id/review", reviewsCtrl.Form)
	member.POST("/books/:id/review", reviewsCtrl.Submit)
	member.POST("/books/:id/reading-list", reading.Add)
	member.POST("/reading-list/:id/remove", reading.Remove)

	// Admin panel
	adminGroup := router.Group("/admin")
	if cfg.AuthMiddleware != nil {
		adminGroup.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
	}
	adminGroup.GET("/requests", admin.Requests)
	adminGroup.POST("/requests/:id/approve", admin.Approve)
	adminGroup.POST("/requests/:id/reject", admin.Reject)
	adminGroup.GET("/stats", admin.Stats)
	adminGroup.GET("/audit", auditCtrl.Events)
	adminGroup.GET("/books", booksAdmin.List)
	adminGroup.GET("/books/new", booksAdmin.NewForm)
	adminGroup.POST("/books", booksAdmin.Create)
	adminGroup.GET("/books/:id/edit", booksAdmin.EditForm)
	adminGroup.POST("/books/:id", booksAdmin.Update)
	adminGroup.POST("/books/:id/delete", booksAdmin.Delete)

	return router
}
