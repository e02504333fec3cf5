package feedback

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthai-suite/triage-server/internal/domain"
)

func TestNewSQLiteStore(t *testing.T) {
	// Create temp directory
	tmpDir, err := os.MkdirTemp("", "feedback-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")

	// Act
	store, err := NewSQLiteStore(dbPath)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	// Verify database file was created
	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "Database file should exist")
}

func TestSQLiteStore_Save(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	feedback := &Feedback{
		InputText:    "I have chest pain and my left arm hurts",
		SymptomKey:   "arm pain+chest pain",
		SessionID:    "sess-1",
		AssignedTier: domain.HIGH_EMERGENCY,
		UserTier:     domain.HIGH_EMERGENCY,
		UserAgreed:   true,
		Notes:        "Went to the ER as advised",
	}

	// Act
	err := store.Save(ctx, feedback)

	// Assert
	require.NoError(t, err)
	assert.NotZero(t, feedback.ID, "ID should be assigned")
	assert.False(t, feedback.CreatedAt.IsZero(), "CreatedAt should be set")
	assert.False(t, feedback.UpdatedAt.IsZero(), "UpdatedAt should be set")
}

func TestSQLiteStore_Save_Update(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Save initial feedback
	feedback := &Feedback{
		InputText:    "fever and cough for two days",
		SymptomKey:   "cough+fever",
		SessionID:    "sess-1",
		AssignedTier: domain.URGENT,
		UserTier:     domain.URGENT,
		UserAgreed:   true,
	}
	err := store.Save(ctx, feedback)
	require.NoError(t, err)
	originalID := feedback.ID

	// Update with same symptom_key + session_id
	feedback.UserTier = domain.ROUTINE
	feedback.UserAgreed = false
	feedback.Notes = "Turned out to be a mild cold"

	err = store.Save(ctx, feedback)
	require.NoError(t, err)

	// Assert - should update, not create new
	assert.Equal(t, originalID, feedback.ID, "Should update existing record")

	// Verify update
	retrieved, err := store.Get(ctx, "cough+fever", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ROUTINE, retrieved.UserTier)
	assert.Equal(t, "Turned out to be a mild cold", retrieved.Notes)
}

func TestSQLiteStore_Get(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Save feedback
	feedback := &Feedback{
		InputText:    "bad headache since this morning",
		SymptomKey:   "headache",
		SessionID:    "",
		AssignedTier: domain.ROUTINE,
		UserTier:     domain.ROUTINE,
		UserAgreed:   true,
	}
	err := store.Save(ctx, feedback)
	require.NoError(t, err)

	// Act
	retrieved, err := store.Get(ctx, "headache", "")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, feedback.SymptomKey, retrieved.SymptomKey)
	assert.Equal(t, feedback.UserTier, retrieved.UserTier)
}

func TestSQLiteStore_Get_WithSession(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Save same symptom key from different sessions
	feedback1 := &Feedback{
		InputText:    "chest pain",
		SymptomKey:   "chest pain",
		SessionID:    "sess-a",
		AssignedTier: domain.EMERGENCY,
		UserTier:     domain.EMERGENCY,
		UserAgreed:   true,
	}
	err := store.Save(ctx, feedback1)
	require.NoError(t, err)

	feedback2 := &Feedback{
		InputText:    "chest pain after exercise",
		SymptomKey:   "chest pain",
		SessionID:    "sess-b",
		AssignedTier: domain.EMERGENCY,
		UserTier:     domain.URGENT,
		UserAgreed:   false,
	}
	err = store.Save(ctx, feedback2)
	require.NoError(t, err)

	// Act - get with specific session
	a, err := store.Get(ctx, "chest pain", "sess-a")
	require.NoError(t, err)
	assert.Equal(t, domain.EMERGENCY, a.UserTier)

	b, err := store.Get(ctx, "chest pain", "sess-b")
	require.NoError(t, err)
	assert.Equal(t, domain.URGENT, b.UserTier)
}

func TestSQLiteStore_Get_NotFound(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Act
	retrieved, err := store.Get(ctx, "no such key", "")

	// Assert
	assert.NoError(t, err)
	assert.Nil(t, retrieved, "Should return nil for not found")
}

func TestSQLiteStore_List(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Save multiple feedback entries
	keys := []string{"headache", "cough+fever", "chest pain"}

	for i, k := range keys {
		feedback := &Feedback{
			InputText:    k,
			SymptomKey:   k,
			AssignedTier: domain.ROUTINE,
			UserTier:     domain.ROUTINE,
			UserAgreed:   true,
		}
		err := store.Save(ctx, feedback)
		require.NoError(t, err, "Failed to save feedback %d", i)
	}

	// Act
	list, err := store.List(ctx, 10, 0)

	// Assert
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestSQLiteStore_List_Pagination(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Save 5 entries
	for i := 0; i < 5; i++ {
		feedback := &Feedback{
			InputText:    "entry",
			SymptomKey:   "symptom" + string(rune('A'+i)),
			AssignedTier: domain.ROUTINE,
			UserTier:     domain.ROUTINE,
			UserAgreed:   true,
		}
		err := store.Save(ctx, feedback)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond) // Ensure different timestamps
	}

	// Act - get first page
	page1, err := store.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	// Act - get second page
	page2, err := store.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page2, 2)

	// Act - get third page
	page3, err := store.List(ctx, 2, 4)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
}

func TestSQLiteStore_Count(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Save 3 entries
	for i := 0; i < 3; i++ {
		feedback := &Feedback{
			InputText:    "entry",
			SymptomKey:   "symptom" + string(rune('A'+i)),
			AssignedTier: domain.ROUTINE,
			UserTier:     domain.ROUTINE,
			UserAgreed:   true,
		}
		err := store.Save(ctx, feedback)
		require.NoError(t, err)
	}

	// Act
	count, err := store.Count(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Save feedback
	feedback := &Feedback{
		InputText:    "chest pain and arm pain",
		SymptomKey:   "arm pain+chest pain",
		AssignedTier: domain.HIGH_EMERGENCY,
		UserTier:     domain.HIGH_EMERGENCY,
		UserAgreed:   true,
	}
	err := store.Save(ctx, feedback)
	require.NoError(t, err)

	// Act
	err = store.Delete(ctx, feedback.ID)

	// Assert
	require.NoError(t, err)

	// Verify deletion
	retrieved, err := store.Get(ctx, "arm pain+chest pain", "")
	assert.NoError(t, err)
	assert.Nil(t, retrieved)
}

func TestSQLiteStore_ExportJSON(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Save feedback
	feedback := &Feedback{
		InputText:    "swollen red leg",
		SymptomKey:   "leg pain+redness+swelling",
		AssignedTier: domain.URGENT,
		UserTier:     domain.URGENT,
		UserAgreed:   true,
		Notes:        "Doctor confirmed DVT concern",
	}
	err := store.Save(ctx, feedback)
	require.NoError(t, err)

	// Act
	var buf bytes.Buffer
	err = store.ExportJSON(ctx, &buf)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "leg pain+redness+swelling")
	assert.Contains(t, buf.String(), "Doctor confirmed DVT concern")
	assert.Contains(t, buf.String(), `"version"`)
	assert.Contains(t, buf.String(), `"count"`)
}

func TestSQLiteStore_ImportJSON(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Create JSON to import
	jsonData := `{
		"version": "1.0",
		"exported_at": "2026-08-20T10:00:00Z",
		"count": 2,
		"feedback": [
			{
				"input_text": "chest pain and arm pain",
				"symptom_key": "arm pain+chest pain",
				"session_id": "sess-1",
				"assigned_tier": "HIGH_EMERGENCY",
				"user_tier": "HIGH_EMERGENCY",
				"user_agreed": true
			},
			{
				"input_text": "fever and cough",
				"symptom_key": "cough+fever",
				"session_id": "sess-2",
				"assigned_tier": "URGENT",
				"user_tier": "ROUTINE",
				"user_agreed": false,
				"notes": "Symptoms resolved on their own"
			}
		]
	}`

	// Act
	imported, skipped, err := store.ImportJSON(ctx, bytes.NewReader([]byte(jsonData)))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, 0, skipped)

	// Verify imports
	count, _ := store.Count(ctx)
	assert.Equal(t, int64(2), count)

	cardiac, err := store.Get(ctx, "arm pain+chest pain", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domain.HIGH_EMERGENCY, cardiac.UserTier)

	flu, err := store.Get(ctx, "cough+fever", "sess-2")
	require.NoError(t, err)
	assert.Equal(t, domain.ROUTINE, flu.UserTier)
	assert.Equal(t, "Symptoms resolved on their own", flu.Notes)
}

func TestSQLiteStore_ImportJSON_SkipDuplicates(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Save existing feedback
	existing := &Feedback{
		InputText:    "chest pain and arm pain",
		SymptomKey:   "arm pain+chest pain",
		SessionID:    "sess-1",
		AssignedTier: domain.HIGH_EMERGENCY,
		UserTier:     domain.HIGH_EMERGENCY,
		UserAgreed:   true,
	}
	err := store.Save(ctx, existing)
	require.NoError(t, err)

	// Import with duplicate
	jsonData := `{
		"version": "1.0",
		"count": 2,
		"feedback": [
			{
				"symptom_key": "arm pain+chest pain",
				"session_id": "sess-1",
				"assigned_tier": "HIGH_EMERGENCY",
				"user_tier": "ROUTINE",
				"user_agreed": false
			},
			{
				"symptom_key": "headache",
				"assigned_tier": "ROUTINE",
				"user_tier": "ROUTINE",
				"user_agreed": true
			}
		]
	}`

	// Act
	imported, skipped, err := store.ImportJSON(ctx, bytes.NewReader([]byte(jsonData)))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, skipped)

	// Verify existing wasn't overwritten
	cardiac, _ := store.Get(ctx, "arm pain+chest pain", "sess-1")
	assert.Equal(t, domain.HIGH_EMERGENCY, cardiac.UserTier, "Existing should not be overwritten")
}

// Helper function to create a test store
func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "feedback-test-*")
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	return store
}
