package borrow

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entities"
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()

	dbPath := "./test_borrow_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func seedUser(t *testing.T, db *database.Database, username string) *entities.User {
	t.Helper()
	user := &entities.User{
		FullName:       "Test User",
		Username:       username,
		Email:          username + "@example.org",
		PasswordHash:   "irrelevant",
		Role:           entities.UserRoleMember,
		MembershipType: entities.MembershipPublic,
	}
	require.NoError(t, db.DB.Create(user).Error)
	return user
}

func seedBook(t *testing.T, db *database.Database, title string) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:        title,
		Author:       "Some Author",
		Genre:        "Fiction",
		Availability: entities.AvailabilityAvailable,
	}
	require.NoError(t, db.DB.Create(book).Error)
	return book
}

func TestService_Request(t *testing.T) {
	t.Run("creates pending request and marks book borrowed", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db, "reader01")
		book := seedBook(t, db, "The Trial")
		service := NewService(db.DB, nil, nil)

		request, err := service.Request(user.ID, book.ID, 14, "please")
		require.NoError(t, err)
		assert.Equal(t, entities.RequestStatusPending, request.Status)
		assert.Equal(t, 14, request.Duration)

		var stored entities.Book
		require.NoError(t, db.DB.First(&stored, book.ID).Error)
		assert.Equal(t, entities.AvailabilityBorrowed, stored.Availability)
	})

	t.Run("rejects invalid durations", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db, "reader02")
		book := seedBook(t, db, "The Castle")
		service := NewService(db.DB, nil, nil)

		for _, days := range []int{0, 1, 10, 30, -7} {
			_, err := service.Request(user.ID, book.ID, days, "")
			assert.ErrorIs(t, err, ErrInvalidDuration)
		}
	})

	t.Run("second request for the same book fails", func(t *testing.T) {
		db := setupTestDB(t)
		first := seedUser(t, db, "reader03")
		second := seedUser(t, db, "reader04")
		book := seedBook(t, db, "Amerika")
		service := NewService(db.DB, nil, nil)

		_, err := service.Request(first.ID, book.ID, 7, "")
		require.NoError(t, err)

		_, err = service.Request(second.ID, book.ID, 7, "")
		assert.ErrorIs(t, err, ErrNotAvailable)

		var count int64
		require.NoError(t, db.DB.Model(&entities.BorrowRequest{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("missing book reports not available", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db, "reader05")
		service := NewService(db.DB, nil, nil)

		_, err := service.Request(user.ID, 9999, 7, "")
		assert.ErrorIs(t, err, ErrNotAvailable)
	})
}

func TestService_Decide(t *testing.T) {
	t.Run("approval keeps book borrowed", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db, "reader10")
		book := seedBook(t, db, "Book A")
		service := NewService(db.DB, nil, nil)

		request, err := service.Request(user.ID, book.ID, 7, "")
		require.NoError(t, err)

		decided, err := service.Decide(request.ID, DecisionApprove, 1)
		require.NoError(t, err)
		assert.Equal(t, entities.RequestStatusApproved, decided.Status)

		var stored entities.Book
		require.NoError(t, db.DB.First(&stored, book.ID).Error)
		assert.Equal(t, entities.AvailabilityBorrowed, stored.Availability)
	})

	t.Run("rejection restores availability", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db, "reader11")
		book := seedBook(t, db, "Book B")
		service := NewService(db.DB, nil, nil)

		request, err := service.Request(user.ID, book.ID, 7, "")
		require.NoError(t, err)

		decided, err := service.Decide(request.ID, DecisionReject, 1)
		require.NoError(t, err)
		assert.Equal(t, entities.RequestStatusRejected, decided.Status)

		var stored entities.Book
		require.NoError(t, db.DB.First(&stored, book.ID).Error)
		assert.Equal(t, entities.AvailabilityAvailable, stored.Availability)
	})

	t.Run("decided requests stay decided", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db, "reader12")
		book := seedBook(t, db, "Book C")
		service := NewService(db.DB, nil, nil)

		request, err := service.Request(user.ID, book.ID, 7, "")
		require.NoError(t, err)

		_, err = service.Decide(request.ID, DecisionApprove, 1)
		require.NoError(t, err)

		_, err = service.Decide(request.ID, DecisionReject, 1)
		assert.ErrorIs(t, err, ErrAlreadyDecided)

		var stored entities.BorrowRequest
		require.NoError(t, db.DB.First(&stored, request.ID).Error)
		assert.Equal(t, entities.RequestStatusApproved, stored.Status)
	})

	t.Run("unknown request", func(t *testing.T) {
		db := setupTestDB(t)
		service := NewService(db.DB, nil, nil)

		_, err := service.Decide(9999, DecisionApprove, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("owner cancels pending request", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db, "reader20")
		book := seedBook(t, db, "Book D")
		service := NewService(db.DB, nil, nil)

		request, err := service.Request(user.ID, book.ID, 21, "")
		require.NoError(t, err)

		require.NoError(t, service.Cancel(request.ID, user.ID))

		var count int64
		require.NoError(t, db.DB.Model(&entities.BorrowRequest{}).Count(&count).Error)
		assert.Equal(t, int64(0), count)

		var stored entities.Book
		require.NoError(t, db.DB.First(&stored, book.ID).Error)
		assert.Equal(t, entities.AvailabilityAvailable, stored.Availability)
	})

	t.Run("cannot cancel someone else's request", func(t *testing.T) {
		db := setupTestDB(t)
		owner := seedUser(t, db, "reader21")
		other := seedUser(t, db, "reader22")
		book := seedBook(t, db, "Book E")
		service := NewService(db.DB, nil, nil)

		request, err := service.Request(owner.ID, book.ID, 7, "")
		require.NoError(t, err)

		err = service.Cancel(request.ID, other.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("cannot cancel a decided request", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db, "reader23")
		book := seedBook(t, db, "Book F")
		service := NewService(db.DB, nil, nil)

		request, err := service.Request(user.ID, book.ID, 7, "")
		require.NoError(t, err)
		_, err = service.Decide(request.ID, DecisionApprove, 1)
		require.NoError(t, err)

		err = service.Cancel(request.ID, user.ID)
		assert.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("unknown request", func(t *testing.T) {
		db := setupTestDB(t)
		service := NewService(db.DB, nil, nil)

		err := service.Cancel(9999, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
