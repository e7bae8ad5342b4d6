package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/borrow"
	"github.com/openshelf/openshelf/internal/database/requests"
)

// AdminController serves the librarian panel: the full request queue,
// approve/reject actions and the borrowing statistics page.
type AdminController struct {
	requests *requests.Repository
	borrow   *borrow.Service
}

func NewAdminController(requestsRepo *requests.Repository, borrowService *borrow.Service) *AdminController {
	return &AdminController{
		requests: requestsRepo,
		borrow:   borrowService,
	}
}

// Requests lists every borrow request newest-first with requester and
// book details.
func (ctrl *AdminController) Requests(c *gin.Context) {
	all, err := ctrl.requests.ListAll()
	if err != nil {
		respondInternalError(c, err, "list borrow requests")
		return
	}

	c.HTML(http.StatusOK, "admin_requests", pageData(c, "Borrow Requests", gin.H{
		"Requests": all,
	}))
}

// Approve grants a pending request.
func (ctrl *AdminController) Approve(c *gin.Context) {
	ctrl.decide(c, borrow.DecisionApprove)
}

// Reject declines a pending request and puts the book back on the
// shelf.
func (ctrl *AdminController) Reject(c *gin.Context) {
	ctrl.decide(c, borrow.DecisionReject)
}

func (ctrl *AdminController) decide(c *gin.Context, decision borrow.Decision) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := ctrl.borrow.Decide(id, decision, auth.GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, borrow.ErrNotFound):
			redirectWithError(c, "/admin/requests", "Borrow request not found.")
		case errors.Is(err, borrow.ErrAlreadyDecided):
			redirectWithError(c, "/admin/requests", "This request has already been decided.")
		default:
			respondInternalError(c, err, "decide borrow request")
		}
		return
	}

	redirectWithSuccess(c, "/admin/requests", "Request "+strings.ToLower(string(request.Status))+".")
}

// Stats renders the aggregate borrowing statistics: total approved
// borrows and the five most-borrowed books.
func (ctrl *AdminController) Stats(c *gin.Context) {
	stats, err := ctrl.requests.GetStats()
	if err != nil {
		respondInternalError(c, err, "load statistics")
		return
	}

	c.HTML(http.StatusOK, "admin_stats", pageData(c, "Borrowing Statistics", gin.H{
		"Stats": stats,
	}))
}
