package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/reviews"
	"github.com/openshelf/openshelf/internal/uploads"
)

// ReviewsController serves the review form and handles submissions,
// including the optional review photo.
type ReviewsController struct {
	books   *books.Repository
	reviews *reviews.Service
	uploads *uploads.Store
}

func NewReviewsController(booksRepo *books.Repository, reviewsService *reviews.Service, uploadStore *uploads.Store) *ReviewsController {
	return &ReviewsController{
		books:   booksRepo,
		reviews: reviewsService,
		uploads: uploadStore,
	}
}

// Form renders the review form. Members who never had an approved
// borrow for this book are redirected back with an explanation.
func (ctrl *ReviewsController) Form(c *gin.Context) {
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

	eligible, err := ctrl.reviews.Eligible(auth.GetUserID(c), id)
	if err != nil {
		respondInternalError(c, err, "check review eligibility")
		return
	}
	if !eligible {
		redirectWithError(c, "/books/"+c.Param("id"), "You can only review books you have borrowed.")
		return
	}

	c.HTML(http.StatusOK, "review_form", pageData(c, "Write a Review", gin.H{
		"Book":          book,
		"MinBodyLength": reviews.MinBodyLength,
	}))
}

// Submit validates and stores the review. The photo is optional; a bad
// upload rejects the whole submission so the member can fix it.
func (ctrl *ReviewsController) Submit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	formPath := "/books/" + c.Param("id") + "/review"

	rating, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil {
		redirectWithError(c, formPath, "Please select a rating.")
		return
	}
	body := c.PostForm("body")

	image := ""
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		image, err = ctrl.uploads.Save(uploads.KindReviewImage, fh)
		if err != nil {
			switch {
			case errors.Is(err, uploads.ErrFileTooLarge):
				redirectWithError(c, formPath, "Review photo must be 2MB or smaller.")
			case errors.Is(err, uploads.ErrUnsupportedFileType):
				redirectWithError(c, formPath, "Review photo must be a JPEG or PNG image.")
			default:
				respondInternalError(c, err, "save review image")
			}
			return
		}
	}

	_, err = ctrl.reviews.Submit(auth.GetUserID(c), id, rating, body, image)
	if err != nil {
		// The review was rejected, so the stored photo is orphaned.
		if image != "" {
			_ = ctrl.uploads.Remove(image)
		}
		switch {
		case errors.Is(err, reviews.ErrInvalidRating),
			errors.Is(err, reviews.ErrBodyTooShort),
			errors.Is(err, reviews.ErrNotEligible):
			redirectWithError(c, formPath, err.Error())
		case errors.Is(err, reviews.ErrBookNotFound):
			c.String(http.StatusNotFound, "Book not found")
		default:
			respondInternalError(c, err, "submit review")
		}
		return
	}

	redirectWithSuccess(c, "/books/"+c.Param("id"), "Review posted. Thank you!")
}
