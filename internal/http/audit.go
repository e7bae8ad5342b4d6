package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/audit"
)

const auditPageSize = 25

// AuditController serves the librarian's view of the audit trail.
type AuditController struct {
	audit *audit.Service
}

func NewAuditController(auditService *audit.Service) *AuditController {
	return &AuditController{audit: auditService}
}

// Events lists audit events newest-first, optionally filtered to a
// single user, paginated through the page query parameter.
func (ctrl *AuditController) Events(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	var userID uint
	if raw := c.Query("user"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "Invalid user id")
			return
		}
		userID = uint(parsed)
	}

	offset := (page - 1) * auditPageSize
	events, total, err := ctrl.audit.GetEvents(userID, auditPageSize, offset)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	totalPages := (int(total) + auditPageSize - 1) / auditPageSize
	if totalPages < 1 {
		totalPages = 1
	}

	c.HTML(http.StatusOK, "admin_audit", pageData(c, "Audit Log", gin.H{
		"Events":      events,
		"TotalEvents": total,
		"Page":        page,
		"PrevPage":    page - 1,
		"NextPage":    page + 1,
		"TotalPages":  totalPages,
		"UserFilter":  userID,
	}))
}
