package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/uploads"
)

// AuthController handles registration, login and logout pages.
type AuthController struct {
	service     *auth.Service
	sessions    *auth.SessionManager
	uploads     *uploads.Store
	auditor     *audit.Service
	rateLimiter *auth.RateLimiter
}

// NewAuthController creates a new authentication controller with its
// own login rate limiter.
func NewAuthController(service *auth.Service, sessions *auth.SessionManager, uploadStore *uploads.Store, auditor *audit.Service, cfg config.Auth) *AuthController {
	rateLimiter := auth.NewRateLimiter(auth.RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:     service,
		sessions:    sessions,
		uploads:     uploadStore,
		auditor:     auditor,
		rateLimiter: rateLimiter,
	}
}

// Stop cleans up the rate limiter's background goroutine.
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.sessions.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "login", pageData(c, "Login", gin.H{
		"Next": sanitizeRedirectPath(c.Query("next")),
	}))
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	renderError := func(message string) {
		c.HTML(http.StatusOK, "login", pageData(c, "Login", gin.H{
			"Next":      next,
			"Username":  username,
			"FormError": message,
		}))
	}

	allowed, retryAfter := ac.rateLimiter.Allow(clientIP, username)
	if !allowed {
		c.Header("Retry-After", retryAfter.String())
		renderError("Too many login attempts. Please try again later.")
		return
	}

	user, err := ac.service.Authenticate(username, password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, username)
		ac.auditor.LogAuth(0, "login", clientIP, false)

		errorMsg := "Invalid username or password."
		if errors.Is(err, auth.ErrAccountLocked) {
			errorMsg = "Account is locked. Please try again later."
		}
		renderError(errorMsg)
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, username)

	if err := ac.sessions.CreateSession(c.Request, user); err != nil {
		renderError("Failed to create session.")
		return
	}

	ac.auditor.LogAuth(user.ID, "login", clientIP, true)
	c.Redirect(http.StatusFound, next)
}

// RegisterPage renders the registration form.
func (ac *AuthController) RegisterPage(c *gin.Context) {
	if ac.sessions.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "register", pageData(c, "Register", gin.H{
		"MembershipTypes": entities.MembershipTypes,
	}))
}

// Register handles the registration form submission, including the
// optional profile picture upload. All validation failures re-render
// the form with every message at once.
func (ac *AuthController) Register(c *gin.Context) {
	in := auth.RegisterInput{
		FullName:        c.PostForm("full_name"),
		Username:        c.PostForm("username"),
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirm_password"),
		MembershipType:  entities.MembershipType(c.PostForm("membership_type")),
		TermsAccepted:   c.PostForm("terms") != "",
	}

	renderErrors := func(messages []string) {
		c.HTML(http.StatusOK, "register", pageData(c, "Register", gin.H{
			"MembershipTypes": entities.MembershipTypes,
			"FormErrors":      messages,
			"Input":           in,
		}))
	}

	if fh, err := c.FormFile("profile_picture"); err == nil && fh != nil {
		name, err := ac.uploads.Save(uploads.KindProfilePicture, fh)
		if err != nil {
			switch {
			case errors.Is(err, uploads.ErrFileTooLarge):
				renderErrors([]string{"Profile picture must be 1MB or smaller."})
			case errors.Is(err, uploads.ErrUnsupportedFileType):
				renderErrors([]string{"Profile picture must be a JPEG or PNG image."})
			default:
				respondInternalError(c, err, "save profile picture")
			}
			return
		}
		in.ProfilePicture = name
	}

	user, err := ac.service.Register(in)
	if err != nil {
		if in.ProfilePicture != "" {
			_ = ac.uploads.Remove(in.ProfilePicture)
		}
		var validationErr *auth.ValidationError
		if errors.As(err, &validationErr) {
			renderErrors(validationErr.Messages)
			return
		}
		respondInternalError(c, err, "register user")
		return
	}

	if err := ac.sessions.CreateSession(c.Request, user); err != nil {
		redirectWithSuccess(c, "/login", "Account created. Please sign in.")
		return
	}

	ac.auditor.LogAuth(user.ID, "register", c.ClientIP(), true)
	c.Redirect(http.StatusFound, "/")
}

// Logout destroys the session and returns to the catalog.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := auth.GetUserID(c)
	_ = ac.sessions.DestroySession(c.Request)
	if userID != 0 {
		ac.auditor.LogAuth(userID, "logout", c.ClientIP(), true)
	}
	c.Redirect(http.StatusFound, "/")
}
