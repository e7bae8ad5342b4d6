package http

import (
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/entities"
)

// ErrorResponse is the standard error response format for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondInternalError logs the error and sends a 500 response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// parseIDParam extracts and validates an unsigned integer ID from URL
// parameters. Returns the parsed ID or responds with a 400 error and
// returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// pageData assembles the template payload shared by every HTML page:
// the signed-in identity, the CSRF token and any flash message carried
// through query parameters after a redirect.
func pageData(c *gin.Context, title string, extra gin.H) gin.H {
	data := gin.H{
		"Title":      title,
		"Username":   auth.GetUsername(c),
		"LoggedIn":   auth.GetUserID(c) != 0,
		"IsAdmin":    auth.GetUserRole(c) == entities.UserRoleAdmin,
		"CSRFToken":  auth.GetCSRFToken(c),
		"FlashError": c.Query("error"),
		"FlashOK":    c.Query("success"),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// redirectWithError sends the browser back to path with a flash error
// in the query string.
func redirectWithError(c *gin.Context, path, message string) {
	c.Redirect(http.StatusFound, path+"?error="+url.QueryEscape(message))
}

// redirectWithSuccess sends the browser to path with a flash success
// message in the query string.
func redirectWithSuccess(c *gin.Context, path, message string) {
	c.Redirect(http.StatusFound, path+"?success="+url.QueryEscape(message))
}

// isLocalPath validates that a redirect path is local to prevent open
// redirect attacks.
func isLocalPath(path string) bool {
	if path == "" {
		return false
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	// Reject protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") {
		return false
	}
	if strings.Contains(path, "\\") {
		return false
	}
	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/"
// if invalid.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}
