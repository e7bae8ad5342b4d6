// Package reviews implements review submission: eligibility is gated on an
// Approved borrow request for the same (user, book) pair.
package reviews

import (
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/notify"
)

// MinBodyLength is the minimum review body length in characters.
const MinBodyLength = 50

var (
	ErrNotEligible   = errors.New("you can only review books you have borrowed")
	ErrBookNotFound  = errors.New("book not found")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrBodyTooShort  = errors.New("review text must be at least 50 characters long")
)

// Service validates and stores reviews.
type Service struct {
	db       *gorm.DB
	notifier *notify.Log
	audit    *audit.Service
}

// NewService creates a new review service.
func NewService(db *gorm.DB, notifier *notify.Log, auditService *audit.Service) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
		audit:    auditService,
	}
}

// Eligible reports whether the user holds an Approved borrow request for
// the book.
func (s *Service) Eligible(userID, bookID uint) (bool, error) {
	var count int64
	err := s.db.Model(&entities.BorrowRequest{}).
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, entities.RequestStatusApproved).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Submit validates and stores a review. All checks run before any write:
// the book must exist, the user must be eligible, the rating must be in
// [1,5] and the trimmed body at least MinBodyLength characters. The image
// is an already-stored upload reference and may be empty.
func (s *Service) Submit(userID, bookID uint, rating int, body, image string) (*entities.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	body = strings.TrimSpace(body)
	if len(body) < MinBodyLength {
		return nil, ErrBodyTooShort
	}

	var book entities.Book
	if err := s.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	eligible, err := s.Eligible(userID, bookID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrNotEligible
	}

	review := &entities.Review{
		UserID: userID,
		BookID: bookID,
		Rating: rating,
		Body:   body,
		Image:  image,
	}
	if err := s.db.Create(review).Error; err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.ReviewPosted(bookID, userID); err != nil {
			log.Printf("Failed to append notification log: %v", err)
		}
	}
	if s.audit != nil {
		s.audit.LogReview(userID, review.ID, bookID)
	}

	return review, nil
}

// ListByBook returns a book's reviews newest-first with reviewer names,
// for the catalog book page.
func (s *Service) ListByBook(bookID uint) ([]ReviewWithUser, error) {
	var results []ReviewWithUser
	err := s.db.Model(&entities.Review{}).
		Select("reviews.id, reviews.rating, reviews.body, reviews.image, reviews.created_at, users.username").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.book_id = ?", bookID).
		Order("reviews.created_at DESC").
		Scan(&results).Error
	return results, err
}

// ReviewWithUser is a review joined with the reviewer's display name.
type ReviewWithUser struct {
	ID        uint      `json:"id"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	Image     string    `json:"image,omitempty"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
