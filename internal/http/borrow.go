package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/borrow"
	"github.com/openshelf/openshelf/internal/database/books"
)

// BorrowController drives the member side of the request workflow:
// the borrow form and its submission.
type BorrowController struct {
	books  *books.Repository
	borrow *borrow.Service
}

func NewBorrowController(booksRepo *books.Repository, borrowService *borrow.Service) *BorrowController {
	return &BorrowController{
		books:  booksRepo,
		borrow: borrowService,
	}
}

// Form renders the borrow-request form for an available book.
func (ctrl *BorrowController) Form(c *gin.Context) {
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

	c.HTML(http.StatusOK, "borrow_form", pageData(c, "Request to Borrow", gin.H{
		"Book":      book,
		"Durations": []int{7, 14, 21},
	}))
}

// Submit creates the borrow request. A book that was taken between the
// form render and submission comes back as a flash error, not a crash.
func (ctrl *BorrowController) Submit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	duration, err := strconv.Atoi(c.PostForm("duration"))
	if err != nil {
		redirectWithError(c, "/books/"+c.Param("id")+"/borrow", "Please select a borrow duration.")
		return
	}
	message := c.PostForm("message")

	_, err = ctrl.borrow.Request(auth.GetUserID(c), id, duration, message)
	if err != nil {
		switch {
		case errors.Is(err, borrow.ErrInvalidDuration):
			redirectWithError(c, "/books/"+c.Param("id")+"/borrow", "Borrow duration must be 7, 14 or 21 days.")
		case errors.Is(err, borrow.ErrNotAvailable):
			redirectWithError(c, "/books/"+c.Param("id"), "This book is not available for borrowing.")
		default:
			respondInternalError(c, err, "create borrow request")
		}
		return
	}

	redirectWithSuccess(c, "/dashboard", "Borrow request submitted.")
}

// Cancel withdraws one of the member's own pending requests and puts
// the book back on the shelf.
func (ctrl *BorrowController) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := ctrl.borrow.Cancel(id, auth.GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, borrow.ErrNotFound):
			redirectWithError(c, "/dashboard", "Borrow request not found.")
		case errors.Is(err, borrow.ErrForbidden):
			c.String(http.StatusForbidden, "You can only cancel your own requests")
		case errors.Is(err, borrow.ErrNotPending):
			redirectWithError(c, "/dashboard", "Only pending requests can be cancelled.")
		default:
			respondInternalError(c, err, "cancel borrow request")
		}
		return
	}

	redirectWithSuccess(c, "/dashboard", "Borrow request cancelled.")
}
