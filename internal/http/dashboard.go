package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/readinglist"
	"github.com/openshelf/openshelf/internal/database/requests"
	"github.com/openshelf/openshelf/internal/entities"
)

// DashboardController renders the signed-in member's home: borrowing
// history, cancellable pending requests and the reading list.
type DashboardController struct {
	requests *requests.Repository
	reading  *readinglist.Repository
	users    userStore
}

// userStore is the slice of the auth service the dashboard needs.
type userStore interface {
	GetUserByID(id uint) (*entities.User, error)
}

func NewDashboardController(requestsRepo *requests.Repository, readingRepo *readinglist.Repository, users userStore) *DashboardController {
	return &DashboardController{
		requests: requestsRepo,
		reading:  readingRepo,
		users:    users,
	}
}

func (ctrl *DashboardController) Page(c *gin.Context) {
	userID := auth.GetUserID(c)

	history, err := ctrl.requests.ListByUser(userID)
	if err != nil {
		respondInternalError(c, err, "list borrow history")
		return
	}

	pending, err := ctrl.requests.ListPendingByUser(userID)
	if err != nil {
		respondInternalError(c, err, "list pending requests")
		return
	}

	readingList, err := ctrl.reading.ListByUser(userID)
	if err != nil {
		respondInternalError(c, err, "list reading list")
		return
	}

	user, err := ctrl.users.GetUserByID(userID)
	if err != nil {
		respondInternalError(c, err, "load user")
		return
	}

	c.HTML(http.StatusOK, "dashboard", pageData(c, "My Dashboard", gin.H{
		"User":        user,
		"History":     history,
		"Pending":     pending,
		"ReadingList": readingList,
	}))
}
