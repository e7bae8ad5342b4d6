package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/readinglist"
)

// ReadingListController handles saving books for later and removing
// them again. Both actions land back on the page they came from.
type ReadingListController struct {
	reading *readinglist.Repository
}

func NewReadingListController(readingRepo *readinglist.Repository) *ReadingListController {
	return &ReadingListController{reading: readingRepo}
}

// Add puts a book on the member's reading list. Adding a book that is
// already there is a no-op, not an error.
func (ctrl *ReadingListController) Add(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.reading.Add(auth.GetUserID(c), bookID); err != nil {
		if errors.Is(err, readinglist.ErrNotFound) {
			c.String(http.StatusNotFound, "Book not found")
			return
		}
		respondInternalError(c, err, "add to reading list")
		return
	}

	redirectWithSuccess(c, "/books/"+c.Param("id"), "Added to your reading list.")
}

// Remove deletes one of the member's own reading list entries.
func (ctrl *ReadingListController) Remove(c *gin.Context) {
	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := ctrl.reading.Remove(entryID, auth.GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, readinglist.ErrNotFound):
			redirectWithError(c, "/dashboard", "Reading list entry not found.")
		case errors.Is(err, readinglist.ErrForbidden):
			c.String(http.StatusForbidden, "You can only remove your own entries")
		default:
			respondInternalError(c, err, "remove from reading list")
		}
		return
	}

	redirectWithSuccess(c, "/dashboard", "Removed from your reading list.")
}
