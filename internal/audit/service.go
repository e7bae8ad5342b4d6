// Package audit provides high-level audit logging over the audit repository.
// Events are written asynchronously so request handling never blocks on the
// audit trail.
package audit

import (
	"log"
	"strings"

	"github.com/openshelf/openshelf/internal/database/audit"
	"github.com/openshelf/openshelf/internal/entities"
)

// Service provides typed audit logging helpers.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// GetEvents retrieves paginated audit events, newest first. A zero userID
// returns events for all users.
func (s *Service) GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(userID, limit, offset)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogBorrowRequest records a new borrow request.
func (s *Service) LogBorrowRequest(userID, requestID, bookID uint) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventBorrow,
		Action:      "request_create",
		Description: "Submitted borrow request",
		EntityType:  "borrow_request",
		EntityID:    &requestID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogCancel records a member cancelling their own pending request.
func (s *Service) LogCancel(userID, requestID uint) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventBorrow,
		Action:      "request_cancel",
		Description: "Cancelled pending borrow request",
		EntityType:  "borrow_request",
		EntityID:    &requestID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogDecision records an admin approving or rejecting a request.
func (s *Service) LogDecision(adminID, requestID uint, status entities.RequestStatus) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      adminID,
		EventType:   entities.AuditEventDecision,
		Action:      "request_" + strings.ToLower(string(status)),
		Description: "Borrow request " + strings.ToLower(string(status)),
		EntityType:  "borrow_request",
		EntityID:    &requestID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogReview records a submitted review.
func (s *Service) LogReview(userID, reviewID, bookID uint) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventReview,
		Action:      "review_create",
		Description: "Posted review",
		EntityType:  "review",
		EntityID:    &reviewID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogBookChange records an admin book mutation: "book_create",
// "book_update" or "book_delete".
func (s *Service) LogBookChange(adminID, bookID uint, action, title string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      adminID,
		EventType:   entities.AuditEventBook,
		Action:      action,
		Description: truncate(action+": "+title, 500),
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action, ipAddr string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		Status:    entities.AuditStatusSuccess,
	}
	if !success {
		event.Status = entities.AuditStatusFailed
	}
	s.LogAsync(event)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
