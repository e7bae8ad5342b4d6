package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/uploads"
)

// BooksAdminController handles catalog management: the book list,
// create and edit forms with cover uploads, and deletion.
type BooksAdminController struct {
	books   *books.Repository
	uploads *uploads.Store
	auditor *audit.Service
}

func NewBooksAdminController(booksRepo *books.Repository, uploadStore *uploads.Store, auditor *audit.Service) *BooksAdminController {
	return &BooksAdminController{
		books:   booksRepo,
		uploads: uploadStore,
		auditor: auditor,
	}
}

// List shows every book alphabetically for management.
func (ctrl *BooksAdminController) List(c *gin.Context) {
	all, err := ctrl.books.ListByTitle()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.HTML(http.StatusOK, "admin_books", pageData(c, "Manage Books", gin.H{
		"Books": all,
	}))
}

// NewForm renders an empty book form.
func (ctrl *BooksAdminController) NewForm(c *gin.Context) {
	c.HTML(http.StatusOK, "book_form", pageData(c, "Add Book", gin.H{
		"Book":   &entities.Book{CoverImage: uploads.DefaultCover},
		"Action": "/admin/books",
	}))
}

// EditForm renders the form pre-filled with an existing book.
func (ctrl *BooksAdminController) EditForm(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := ctrl.books.GetByID(id)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			c.String(http.StatusNotFound, "Book not found")
			return
		}
		respondInternalError(c, err, "load book")
		return
	}

	c.HTML(http.StatusOK, "book_form", pageData(c, "Edit Book", gin.H{
		"Book":   book,
		"Action": "/admin/books/" + c.Param("id"),
	}))
}

// bookForm reads and validates the shared create/update fields.
func (ctrl *BooksAdminController) bookForm(c *gin.Context) (title, author, genre string, ok bool) {
	title = strings.TrimSpace(c.PostForm("title"))
	author = strings.TrimSpace(c.PostForm("author"))
	genre = strings.TrimSpace(c.PostForm("genre"))
	return title, author, genre, title != "" && author != "" && genre != ""
}

// saveCover stores an uploaded cover image if one was provided.
// Returns the stored filename or "" when the field was left empty.
func (ctrl *BooksAdminController) saveCover(c *gin.Context, formPath string) (string, bool) {
	fh, err := c.FormFile("cover")
	if err != nil || fh == nil {
		return "", true
	}

	name, err := ctrl.uploads.Save(uploads.KindBookCover, fh)
	if err != nil {
		switch {
		case errors.Is(err, uploads.ErrFileTooLarge):
			redirectWithError(c, formPath, "Cover image must be 2MB or smaller.")
		case errors.Is(err, uploads.ErrUnsupportedFileType):
			redirectWithError(c, formPath, "Cover image must be a JPEG or PNG image.")
		default:
			respondInternalError(c, err, "save cover image")
		}
		return "", false
	}
	return name, true
}

// Create adds a new book to the catalog.
func (ctrl *BooksAdminController) Create(c *gin.Context) {
	title, author, genre, ok := ctrl.bookForm(c)
	if !ok {
		redirectWithError(c, "/admin/books/new", "Title, author and genre are required.")
		return
	}

	cover, ok := ctrl.saveCover(c, "/admin/books/new")
	if !ok {
		return
	}
	if cover == "" {
		cover = uploads.DefaultCover
	}

	book := &entities.Book{
		Title:        title,
		Author:       author,
		Genre:        genre,
		CoverImage:   cover,
		Availability: entities.AvailabilityAvailable,
	}
	if err := ctrl.books.Create(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	ctrl.auditor.LogBookChange(auth.GetUserID(c), book.ID, "created", book.Title)
	redirectWithSuccess(c, "/admin/books", "Book added.")
}

// Update edits an existing book. A freshly uploaded cover replaces the
// old file on disk unless the old one is the shared default.
func (ctrl *BooksAdminController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	formPath := "/admin/books/" + c.Param("id") + "/edit"

	book, err := ctrl.books.GetByID(id)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			c.String(http.StatusNotFound, "Book not found")
			return
		}
		respondInternalError(c, err, "load book")
		return
	}

	title, author, genre, ok := ctrl.bookForm(c)
	if !ok {
		redirectWithError(c, formPath, "Title, author and genre are required.")
		return
	}

	cover, ok := ctrl.saveCover(c, formPath)
	if !ok {
		return
	}

	oldCover := book.CoverImage
	book.Title = title
	book.Author = author
	book.Genre = genre
	if cover != "" {
		book.CoverImage = cover
	}

	if err := ctrl.books.Update(book); err != nil {
		if cover != "" {
			_ = ctrl.uploads.Remove(cover)
		}
		respondInternalError(c, err, "update book")
		return
	}

	if cover != "" && oldCover != cover {
		_ = ctrl.uploads.Remove(oldCover)
	}

	ctrl.auditor.LogBookChange(auth.GetUserID(c), book.ID, "updated", book.Title)
	redirectWithSuccess(c, "/admin/books", "Book updated.")
}

// Delete removes a book together with its requests, reviews and
// reading list entries. Books with pending requests are protected.
func (ctrl *BooksAdminController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := ctrl.books.GetByID(id)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			redirectWithError(c, "/admin/books", "Book not found.")
			return
		}
		respondInternalError(c, err, "load book")
		return
	}

	if err := ctrl.books.Delete(id); err != nil {
		switch {
		case errors.Is(err, books.ErrNotFound):
			redirectWithError(c, "/admin/books", "Book not found.")
		case errors.Is(err, books.ErrHasPendingRequests):
			redirectWithError(c, "/admin/books", "Resolve the pending borrow requests before deleting this book.")
		default:
			respondInternalError(c, err, "delete book")
		}
		return
	}

	_ = ctrl.uploads.Remove(book.CoverImage)
	ctrl.auditor.LogBookChange(auth.GetUserID(c), id, "deleted", book.Title)
	redirectWithSuccess(c, "/admin/books", "Book deleted.")
}
