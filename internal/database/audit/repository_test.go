package audit

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entities"
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()

	dbPath := "./test_audit_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func TestRepository_LogEvent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)

	event := &entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventBorrow,
		Action:      "request_create",
		Description: "Borrow request for book 3",
		EntityType:  "borrow_request",
		Status:      entities.AuditStatusSuccess,
	}
	require.NoError(t, repo.LogEvent(event))
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.LogEvent(&entities.AuditEvent{
			UserID:    uint(i%2 + 1),
			EventType: entities.AuditEventAuth,
			Action:    "login",
			Status:    entities.AuditStatusSuccess,
		}))
	}

	all, total, err := repo.GetEvents(0, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, all, 5)

	mine, total, err := repo.GetEvents(1, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	for _, e := range mine {
		assert.Equal(t, uint(1), e.UserID)
	}

	paged, total, err := repo.GetEvents(0, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, paged, 2)
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)

	old := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventBook,
		Action:    "book_create",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().AddDate(0, 0, -60),
	}
	require.NoError(t, repo.LogEvent(old))
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventBook,
		Action:    "book_update",
		Status:    entities.AuditStatusSuccess,
	}))

	deleted, err := repo.DeleteOldEvents(time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err := repo.GetEvents(0, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
