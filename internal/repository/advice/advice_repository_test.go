package advice_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/finsarthi/internal/database"
	"github.com/iyunix/finsarthi/internal/domain"
	"github.com/iyunix/finsarthi/internal/repository/advice"
)

func newRepo(t *testing.T) advice.AdviceRepository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "advice.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return advice.NewAdviceRepository(db)
}

func session(key string, created time.Time) *domain.AdviceSession {
	return &domain.AdviceSession{
		SessionKey:      key,
		PromptKey:       "advice.basic",
		FormData:        domain.FormData{"income": "5000"},
		Language:        "en",
		GeneratedAdvice: "Save first.",
		CreatedAt:       created,
	}
}

func TestCreateAndFind(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, session("k1", time.Now()))
	require.NoError(t, err)

	got, err := repo.FindByKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, domain.FormData{"income": "5000"}, got.FormData)
	assert.Nil(t, got.UserID)

	_, err = repo.FindByKey(ctx, "missing")
	assert.ErrorIs(t, err, advice.ErrSessionNotFound)

	_, err = repo.Create(ctx, session("k1", time.Now()))
	assert.Error(t, err, "session keys are unique")

	_, err = repo.Create(ctx, &domain.AdviceSession{SessionKey: "k2"})
	assert.Error(t, err)
}

func TestClaim(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	_, err := repo.Create(ctx, session("k1", time.Now()))
	require.NoError(t, err)

	claimed, err := repo.Claim(ctx, "k1", 7)
	require.NoError(t, err)
	require.NotNil(t, claimed.UserID)
	assert.Equal(t, uint(7), *claimed.UserID)

	_, err = repo.Claim(ctx, "k1", 7)
	assert.NoError(t, err, "claiming your own session again is a no-op")

	_, err = repo.Claim(ctx, "k1", 8)
	assert.ErrorIs(t, err, advice.ErrSessionClaimed)

	_, err = repo.Claim(ctx, "missing", 7)
	assert.ErrorIs(t, err, advice.ErrSessionNotFound)
}

func TestFindByUserIDNewestFirst(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, key := range []string{"old", "new"} {
		_, err := repo.Create(ctx, session(key, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
		_, err = repo.Claim(ctx, key, 7)
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, session("anon", base))
	require.NoError(t, err)

	sessions, err := repo.FindByUserID(ctx, 7)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].SessionKey)
	assert.Equal(t, "old", sessions[1].SessionKey)
}
