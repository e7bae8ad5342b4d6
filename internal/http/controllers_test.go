package http

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditservice "github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/borrow"
	"github.com/openshelf/openshelf/internal/database"
	auditrepo "github.com/openshelf/openshelf/internal/database/audit"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/readinglist"
	"github.com/openshelf/openshelf/internal/database/requests"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/reviews"
)

// testTemplates defines stub pages for every template name the
// controllers render, so tests exercise handlers without the real UI.
const testTemplates = `
{{define "catalog"}}catalog: {{len .Books}} books{{range .Books}} [{{.Title}}]{{end}}{{end}}
{{define "book"}}book: {{.Book.Title}} reviews:{{len .Reviews}}{{end}}
{{define "borrow_form"}}borrow: {{.Book.Title}}{{end}}
{{define "dashboard"}}dashboard: {{len .History}} past {{len .Pending}} pending{{end}}
{{define "review_form"}}review: {{.Book.Title}}{{end}}
{{define "admin_requests"}}requests: {{len .Requests}}{{end}}
{{define "admin_stats"}}stats: {{.Stats.ApprovedCount}}{{end}}
{{define "admin_audit"}}audit: {{len .Events}} of {{.TotalEvents}}{{end}}
{{define "admin_books"}}manage: {{len .Books}}{{end}}
{{define "book_form"}}form: {{.Book.Title}}{{end}}
{{define "login"}}login{{end}}
{{define "register"}}register{{end}}
`

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func newTestRouter(t *testing.T, userID uint, role entities.UserRole) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New("").Parse(testTemplates)))
	router.Use(func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, userID)
		c.Set(auth.ContextKeyUsername, "tester")
		c.Set(auth.ContextKeyRole, role)
		c.Next()
	})
	return router
}

func seedUser(t *testing.T, db *database.Database, username string) *entities.User {
	t.Helper()
	user := &entities.User{
		FullName:       "Test User",
		Username:       username,
		Email:          username + "@example.org",
		PasswordHash:   "x",
		Role:           entities.UserRoleMember,
		MembershipType: entities.MembershipPublic,
	}
	require.NoError(t, db.DB.Create(user).Error)
	return user
}

func seedBook(t *testing.T, db *database.Database, title string, availability entities.Availability) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:        title,
		Author:       "Author",
		Genre:        "Fiction",
		Availability: availability,
	}
	require.NoError(t, db.DB.Create(book).Error)
	return book
}

func TestCatalogController_Index(t *testing.T) {
	db := setupTestDB(t)
	seedBook(t, db, "Visible", entities.AvailabilityAvailable)
	seedBook(t, db, "Taken", entities.AvailabilityBorrowed)

	controller := NewCatalogController(books.NewRepository(db.DB), reviews.NewService(db.DB, nil, nil))
	router := newTestRouter(t, 0, "")
	router.GET("/", controller.Index)

	t.Run("lists everything by default", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "2 books")
	})

	t.Run("filters to available books", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/?availability=Available", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "1 books")
		assert.Contains(t, w.Body.String(), "Visible")
		assert.NotContains(t, w.Body.String(), "Taken")
	})

	t.Run("filters to borrowed books", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/?availability=Borrowed", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "1 books")
		assert.Contains(t, w.Body.String(), "Taken")
		assert.NotContains(t, w.Body.String(), "Visible")
	})

	t.Run("unknown availability value is ignored", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/?availability=Lost", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "2 books")
	})

	t.Run("bad sort key falls back instead of failing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/?sort=bogus", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCatalogController_Detail(t *testing.T) {
	db := setupTestDB(t)
	book := seedBook(t, db, "Detailed", entities.AvailabilityAvailable)

	controller := NewCatalogController(books.NewRepository(db.DB), reviews.NewService(db.DB, nil, nil))
	router := newTestRouter(t, 0, "")
	router.GET("/books/:id", controller.Detail)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/books/1", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), book.Title)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/books/999", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/books/abc", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	return w
}

func TestBorrowController_Submit(t *testing.T) {
	t.Run("creates request and redirects to dashboard", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db, "borrower1")
		seedBook(t, db, "Wanted", entities.AvailabilityAvailable)

		controller := NewBorrowController(books.NewRepository(db.DB), borrow.NewService(db.DB, nil, nil))
		router := newTestRouter(t, user.ID, entities.UserRoleMember)
		router.POST("/books/:id/borrow", controller.Submit)

		w := postForm(router, "/books/1/borrow", url.Values{"duration": {"14"}, "message": {"hi"}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "/dashboard")

		var count int64
		db.DB.Model(&entities.BorrowRequest{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("unavailable book redirects back with error", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db, "borrower2")
		seedBook(t, db, "Taken", entities.AvailabilityBorrowed)

		controller := NewBorrowController(books.NewRepository(db.DB), borrow.NewService(db.DB, nil, nil))
		router := newTestRouter(t, user.ID, entities.UserRoleMember)
		router.POST("/books/:id/borrow", controller.Submit)

		w := postForm(router, "/books/1/borrow", url.Values{"duration": {"7"}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "error=")
	})

	t.Run("bad duration redirects back with error", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db, "borrower3")
		seedBook(t, db, "Wanted", entities.AvailabilityAvailable)

		controller := NewBorrowController(books.NewRepository(db.DB), borrow.NewService(db.DB, nil, nil))
		router := newTestRouter(t, user.ID, entities.UserRoleMember)
		router.POST("/books/:id/borrow", controller.Submit)

		w := postForm(router, "/books/1/borrow", url.Values{"duration": {"10"}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "error=")

		var count int64
		db.DB.Model(&entities.BorrowRequest{}).Count(&count)
		assert.Zero(t, count)
	})
}

func TestAdminController_Decide(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "requester1")
	seedBook(t, db, "Queued", entities.AvailabilityAvailable)

	borrowService := borrow.NewService(db.DB, nil, nil)
	request, err := borrowService.Request(user.ID, 1, 7, "")
	require.NoError(t, err)

	controller := NewAdminController(requests.NewRepository(db.DB), borrowService)
	router := newTestRouter(t, 99, entities.UserRoleAdmin)
	router.POST("/admin/requests/:id/approve", controller.Approve)
	router.POST("/admin/requests/:id/reject", controller.Reject)

	w := postForm(router, "/admin/requests/1/approve", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "success=")

	var stored entities.BorrowRequest
	require.NoError(t, db.DB.First(&stored, request.ID).Error)
	assert.Equal(t, entities.RequestStatusApproved, stored.Status)

	// Deciding again lands back with an error flash
	w = postForm(router, "/admin/requests/1/reject", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=")
}

func TestDashboardController_Page(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "dashuser1")
	seedBook(t, db, "Mine", entities.AvailabilityAvailable)

	borrowService := borrow.NewService(db.DB, nil, nil)
	_, err := borrowService.Request(user.ID, 1, 7, "")
	require.NoError(t, err)

	controller := NewDashboardController(
		requests.NewRepository(db.DB),
		readinglist.NewRepository(db.DB),
		userStoreFunc(func(id uint) (*entities.User, error) {
			return user, nil
		}),
	)
	router := newTestRouter(t, user.ID, entities.UserRoleMember)
	router.GET("/dashboard", controller.Page)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/dashboard", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1 past 1 pending")
}

// userStoreFunc adapts a function to the userStore interface.
type userStoreFunc func(id uint) (*entities.User, error)

func (f userStoreFunc) GetUserByID(id uint) (*entities.User, error) { return f(id) }

func TestAuditController_Events(t *testing.T) {
	db := setupTestDB(t)

	service := auditservice.NewService(auditrepo.NewRepository(db.DB))
	for i := 0; i < 3; i++ {
		require.NoError(t, service.Log(&entities.AuditEvent{
			UserID:      uint(i + 1),
			EventType:   entities.AuditEventAuth,
			Action:      "login",
			Description: "User logged in",
			Status:      entities.AuditStatusSuccess,
		}))
	}

	controller := NewAuditController(service)
	router := newTestRouter(t, 9, entities.UserRoleAdmin)
	router.GET("/admin/audit", controller.Events)

	t.Run("lists all events", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/admin/audit", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "audit: 3 of 3")
	})

	t.Run("filters by user", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/admin/audit?user=2", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "audit: 1 of 1")
	})

	t.Run("rejects a malformed user filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/admin/audit?user=abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/admin/audit?page=5", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "audit: 0 of 3")
	})
}
