// Package books provides database operations for the book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	results, err := repo.List(books.Filter{Genre: "Fiction", Sort: books.SortTitleAsc})
package books

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrNotFound           = errors.New("book not found")
	ErrHasPendingRequests = errors.New("book has pending borrow requests")
)

// Sort is a catalog sort key. Only values from the closed set below are
// ever turned into an ORDER BY clause; anything else falls back to the
// default so unvalidated input never reaches query construction.
type Sort string

const (
	SortNewestFirst Sort = "added_date_desc"
	SortTitleAsc    Sort = "title_asc"
	SortAuthorAsc   Sort = "author_asc"
)

// NormalizeSort maps a raw query value onto the sort allow-list,
// falling back to newest-first for anything unrecognized.
func NormalizeSort(raw string) Sort {
	switch Sort(raw) {
	case SortTitleAsc, SortAuthorAsc, SortNewestFirst:
		return Sort(raw)
	}
	return SortNewestFirst
}

func (s Sort) orderClause() string {
	switch s {
	case SortTitleAsc:
		return "title ASC"
	case SortAuthorAsc:
		return "author ASC"
	}
	return "created_at DESC"
}

// Filter holds the optional catalog predicates. Zero values mean "no filter".
type Filter struct {
	Search       string
	Genre        string
	Availability entities.Availability
	Sort         Sort
}

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns the full filtered catalog. Search matches title or author,
// substring and case-insensitive. There is no pagination.
func (r *Repository) List(f Filter) ([]entities.Book, error) {
	query := r.db.Model(&entities.Book{})

	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", pattern, pattern)
	}
	if f.Genre != "" {
		query = query.Where("genre = ?", f.Genre)
	}
	if f.Availability != "" {
		query = query.Where("availability = ?", f.Availability)
	}

	var results []entities.Book
	err := query.Order(f.Sort.orderClause()).Find(&results).Error
	return results, err
}

// ListByTitle returns every book ordered by title, for the admin manage view.
func (r *Repository) ListByTitle() ([]entities.Book, error) {
	var results []entities.Book
	err := r.db.Order("title ASC").Find(&results).Error
	return results, err
}

// Genres returns the distinct genre values for the filter dropdown.
func (r *Repository) Genres() ([]string, error) {
	var genres []string
	err := r.db.Model(&entities.Book{}).
		Distinct("genre").
		Order("genre ASC").
		Pluck("genre", &genres).Error
	return genres, err
}

// GetByID retrieves a book by ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// Create inserts a new catalog record.
func (r *Repository) Create(book *entities.Book) error {
	if book.Availability == "" {
		book.Availability = entities.AvailabilityAvailable
	}
	return r.db.Create(book).Error
}

// Update saves changes to an existing catalog record.
func (r *Repository) Update(book *entities.Book) error {
	result := r.db.Model(&entities.Book{}).Where("id = ?", book.ID).Updates(map[string]any{
		"title":        book.Title,
		"author":       book.Author,
		"genre":        book.Genre,
		"cover_image":  book.CoverImage,
		"availability": book.Availability,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a book and its dependent rows. Deletion is blocked while
// the book still has Pending borrow requests; decided requests, reviews and
// reading-list entries are removed together with the book in one transaction.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var pending int64
		err := tx.Model(&entities.BorrowRequest{}).
			Where("book_id = ? AND status = ?", id, entities.RequestStatusPending).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return ErrHasPendingRequests
		}

		if err := tx.Where("book_id = ?", id).Delete(&entities.BorrowRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.ReadingListEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Book{}, id).Error
	})
}
