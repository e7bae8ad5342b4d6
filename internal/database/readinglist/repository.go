// Package readinglist provides database operations for reading-list bookmarks.
package readinglist

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrNotFound  = errors.New("reading list entry not found")
	ErrForbidden = errors.New("reading list entry belongs to another user")
)

// EntryWithBook joins an entry with the book display fields.
type EntryWithBook struct {
	ID           uint                  `json:"id"`
	BookID       uint                  `json:"book_id"`
	Title        string                `json:"title"`
	Author       string                `json:"author"`
	Availability entities.Availability `json:"availability"`
	CreatedAt    time.Time             `json:"created_at"`
}

// Repository handles all reading-list database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reading-list repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add bookmarks a book for a user. Adding a book that is already on the
// list is a no-op; the (user, book) pair is unique.
func (r *Repository) Add(userID, bookID uint) error {
	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var existing entities.ReadingListEntry
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.Create(&entities.ReadingListEntry{UserID: userID, BookID: bookID}).Error
}

// ListByUser returns a user's reading list joined with book fields,
// ordered by book title.
func (r *Repository) ListByUser(userID uint) ([]EntryWithBook, error) {
	var results []EntryWithBook
	err := r.db.Model(&entities.ReadingListEntry{}).
		Select("reading_list.id, reading_list.book_id, books.title, books.author, books.availability, reading_list.created_at").
		Joins("JOIN books ON books.id = reading_list.book_id").
		Where("reading_list.user_id = ?", userID).
		Order("books.title ASC").
		Scan(&results).Error
	return results, err
}

// Remove deletes an entry, scoped to its owner. A mismatched owner gets
// ErrForbidden rather than a silent no-op.
func (r *Repository) Remove(entryID, userID uint) error {
	var entry entities.ReadingListEntry
	err := r.db.First(&entry, entryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if entry.UserID != userID {
		return ErrForbidden
	}
	return r.db.Delete(&entities.ReadingListEntry{}, entryID).Error
}
