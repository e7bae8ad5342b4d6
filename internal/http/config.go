package http

import (
	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/borrow"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/readinglist"
	"github.com/openshelf/openshelf/internal/database/requests"
	"github.com/openshelf/openshelf/internal/reviews"
	"github.com/openshelf/openshelf/internal/uploads"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces a long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Books    *books.Repository
	Requests *requests.Repository
	Reading  *readinglist.Repository
	Borrow   *borrow.Service
	Reviews  *reviews.Service
	Uploads  *uploads.Store
	Auditor  *audit.Service

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
