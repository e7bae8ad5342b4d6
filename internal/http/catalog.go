package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/reviews"
)

// CatalogController renders the public catalog pages: the browsable,
// searchable book list and the per-book detail page with reviews.
type CatalogController struct {
	books   *books.Repository
	reviews *reviews.Service
}

func NewCatalogController(booksRepo *books.Repository, reviewsService *reviews.Service) *CatalogController {
	return &CatalogController{
		books:   booksRepo,
		reviews: reviewsService,
	}
}

// Index renders the catalog with search, genre and availability filters
// plus the selected sort order. Unknown sort keys fall back to
// newest-first rather than erroring.
func (ctrl *CatalogController) Index(c *gin.Context) {
	filter := books.Filter{
		Search: c.Query("search"),
		Genre:  c.Query("genre"),
		Sort:   books.NormalizeSort(c.Query("sort")),
	}
	switch availability := entities.Availability(c.Query("availability")); availability {
	case entities.AvailabilityAvailable, entities.AvailabilityBorrowed:
		filter.Availability = availability
	}

	results, err := ctrl.books.List(filter)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	genres, err := ctrl.books.Genres()
	if err != nil {
		respondInternalError(c, err, "list genres")
		return
	}

	c.HTML(http.StatusOK, "catalog", pageData(c, "Catalog", gin.H{
		"Books":        results,
		"Genres":       genres,
		"Search":       filter.Search,
		"Genre":        filter.Genre,
		"Availability": string(filter.Availability),
		"Sort":         string(filter.Sort),
	}))
}

// Detail renders a single book with its reviews. Signed-in members who
// have an approved borrow for the book see the review form link.
func (ctrl *CatalogController) Detail(c *gin.Context) {
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

	bookReviews, err := ctrl.reviews.ListByBook(id)
	if err != nil {
		respondInternalError(c, err, "list reviews")
		return
	}

	canReview := false
	if userID := auth.GetUserID(c); userID != 0 {
		canReview, _ = ctrl.reviews.Eligible(userID, id)
	}

	c.HTML(http.StatusOK, "book", pageData(c, book.Title, gin.H{
		"Book":      book,
		"Reviews":   bookReviews,
		"CanReview": canReview,
	}))
}
