// Package borrow implements the borrow-request lifecycle: a request is
// created Pending against an Available book, decided by an admin
// (Approved or Rejected), and may be cancelled by its owner while Pending.
// Book availability is kept consistent with request state inside the same
// transaction as each transition.
package borrow

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/notify"
)

var (
	ErrNotAvailable    = errors.New("book is not available for borrowing")
	ErrNotFound        = errors.New("borrow request not found")
	ErrForbidden       = errors.New("borrow request belongs to another user")
	ErrNotPending      = errors.New("borrow request is no longer pending")
	ErrAlreadyDecided  = errors.New("borrow request has already been decided")
	ErrInvalidDuration = errors.New("borrow duration must be 7, 14 or 21 days")
)

// Decision is an admin's verdict on a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Status returns the request status a decision resolves to.
func (d Decision) Status() (entities.RequestStatus, bool) {
	switch d {
	case DecisionApprove:
		return entities.RequestStatusApproved, true
	case DecisionReject:
		return entities.RequestStatusRejected, true
	}
	return "", false
}

// Service transitions borrow requests through their lifecycle.
type Service struct {
	db       *gorm.DB
	notifier *notify.Log
	audit    *audit.Service
}

// NewService creates a new borrow lifecycle service. The notifier and audit
// service may be nil, in which case the corresponding side effects are skipped.
func NewService(db *gorm.DB, notifier *notify.Log, auditService *audit.Service) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
		audit:    auditService,
	}
}

func validDuration(days int) bool {
	return days == 7 || days == 14 || days == 21
}

// Request creates a Pending borrow request and flips the book to Borrowed,
// both inside one transaction. The availability flip is a conditional update
// guarded by its affected-row count, so two concurrent requests against the
// same Available book cannot both succeed: the loser sees zero rows updated
// and gets ErrNotAvailable. A missing book reports the same error, matching
// what the catalog shows the member.
func (s *Service) Request(userID, bookID uint, duration int, message string) (*entities.BorrowRequest, error) {
	if !validDuration(duration) {
		return nil, ErrInvalidDuration
	}

	request := &entities.BorrowRequest{
		UserID:   userID,
		BookID:   bookID,
		Duration: duration,
		Message:  message,
		Status:   entities.RequestStatusPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Book{}).
			Where("id = ? AND availability = ?", bookID, entities.AvailabilityAvailable).
			Update("availability", entities.AvailabilityBorrowed)
		if result.Error != nil {
			return fmt.Errorf("flip availability: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotAvailable
		}
		return tx.Create(request).Error
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.LogBorrowRequest(userID, request.ID, bookID)
	}

	return request, nil
}

// Decide resolves a Pending request as Approved or Rejected. Only Pending
// requests may be decided; re-deciding a terminal request fails with
// ErrAlreadyDecided. Rejection restores the book to Available in the same
// transaction, since a rejected request no longer holds the book.
func (s *Service) Decide(requestID uint, decision Decision, adminID uint) (*entities.BorrowRequest, error) {
	status, ok := decision.Status()
	if !ok {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	var request entities.BorrowRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if request.Status != entities.RequestStatusPending {
			return ErrAlreadyDecided
		}

		if err := tx.Model(&request).Update("status", status).Error; err != nil {
			return err
		}
		request.Status = status

		if status == entities.RequestStatusRejected {
			return tx.Model(&entities.Book{}).
				Where("id = ?", request.BookID).
				Update("availability", entities.AvailabilityAvailable).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.RequestDecided(requestID, status); err != nil {
			log.Printf("Failed to append notification log: %v", err)
		}
	}
	if s.audit != nil {
		s.audit.LogDecision(adminID, requestID, status)
	}

	return &request, nil
}

// Cancel deletes a member's own Pending request and restores the book to
// Available. Unmet preconditions surface as typed errors rather than
// silent no-ops: ErrNotFound, ErrForbidden, ErrNotPending.
func (s *Service) Cancel(requestID, userID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request entities.BorrowRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if request.UserID != userID {
			return ErrForbidden
		}
		if request.Status != entities.RequestStatusPending {
			return ErrNotPending
		}

		if err := tx.Delete(&entities.BorrowRequest{}, requestID).Error; err != nil {
			return err
		}
		return tx.Model(&entities.Book{}).
			Where("id = ?", request.BookID).
			Update("availability", entities.AvailabilityAvailable).Error
	})
	if err != nil {
		return err
	}

	if s.audit != nil {
		s.audit.LogCancel(userID, requestID)
	}
	return nil
}
