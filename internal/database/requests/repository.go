// Package requests provides the read side of the borrow-request store:
// dashboard listings, the admin overview and aggregate statistics.
// State transitions live in internal/borrow.
package requests

import (
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// RequestWithDetails joins a borrow request with the display fields
// the admin and dashboard views need.
type RequestWithDetails struct {
	ID        uint                   `json:"id"`
	Username  string                 `json:"username"`
	Title     string                 `json:"title"`
	Author    string                 `json:"author"`
	Duration  int                    `json:"duration"`
	Message   string                 `json:"message,omitempty"`
	Status    entities.RequestStatus `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
}

// BookBorrowCount is one row of the top-borrowed statistic.
type BookBorrowCount struct {
	BookID      uint   `json:"book_id"`
	Title       string `json:"title"`
	BorrowCount int64  `json:"borrow_count"`
}

// Stats holds the admin aggregate view.
type Stats struct {
	ApprovedCount int64             `json:"approved_count"`
	TopBooks      []BookBorrowCount `json:"top_books"`
}

// Repository handles borrow-request queries.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new borrow-request repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListAll returns every borrow request newest-first with requester and
// book display fields, for the admin overview.
func (r *Repository) ListAll() ([]RequestWithDetails, error) {
	var results []RequestWithDetails
	err := r.db.Model(&entities.BorrowRequest{}).
		Select("borrow_requests.id, users.username, books.title, books.author, borrow_requests.duration, borrow_requests.message, borrow_requests.status, borrow_requests.created_at").
		Joins("JOIN users ON users.id = borrow_requests.user_id").
		Joins("JOIN books ON books.id = borrow_requests.book_id").
		Order("borrow_requests.created_at DESC").
		Scan(&results).Error
	return results, err
}

// ListByUser returns a member's full borrowing history, newest-first.
func (r *Repository) ListByUser(userID uint) ([]RequestWithDetails, error) {
	var results []RequestWithDetails
	err := r.db.Model(&entities.BorrowRequest{}).
		Select("borrow_requests.id, users.username, books.title, books.author, borrow_requests.duration, borrow_requests.status, borrow_requests.created_at").
		Joins("JOIN users ON users.id = borrow_requests.user_id").
		Joins("JOIN books ON books.id = borrow_requests.book_id").
		Where("borrow_requests.user_id = ?", userID).
		Order("borrow_requests.created_at DESC").
		Scan(&results).Error
	return results, err
}

// ListPendingByUser returns a member's Pending requests, newest-first.
// These are the cancellable rows on the dashboard.
func (r *Repository) ListPendingByUser(userID uint) ([]RequestWithDetails, error) {
	var results []RequestWithDetails
	err := r.db.Model(&entities.BorrowRequest{}).
		Select("borrow_requests.id, users.username, books.title, books.author, borrow_requests.duration, borrow_requests.status, borrow_requests.created_at").
		Joins("JOIN users ON users.id = borrow_requests.user_id").
		Joins("JOIN books ON books.id = borrow_requests.book_id").
		Where("borrow_requests.user_id = ? AND borrow_requests.status = ?", userID, entities.RequestStatusPending).
		Order("borrow_requests.created_at DESC").
		Scan(&results).Error
	return results, err
}

// GetStats returns the admin aggregate statistics: total Approved requests
// and the top five books by Approved-request count. Ties are broken by
// book ID ascending so the ordering is deterministic.
func (r *Repository) GetStats() (*Stats, error) {
	stats := &Stats{}

	err := r.db.Model(&entities.BorrowRequest{}).
		Where("status = ?", entities.RequestStatusApproved).
		Count(&stats.ApprovedCount).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&entities.BorrowRequest{}).
		Select("books.id AS book_id, books.title, COUNT(borrow_requests.id) AS borrow_count").
		Joins("JOIN books ON books.id = borrow_requests.book_id").
		Where("borrow_requests.status = ?", entities.RequestStatusApproved).
		Group("books.id").
		Order("borrow_count DESC, books.id ASC").
		Limit(5).
		Scan(&stats.TopBooks).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
