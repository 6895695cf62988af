package history

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/lifeflow/automailer/internal/core"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func draft(id, to string, createdAt time.Time, ttl time.Duration) *core.DraftRecord {
	return &core.DraftRecord{
		ID:        id,
		To:        to,
		Body:      "Hello " + to,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(ttl),
	}
}

// exerciseHistory checks the behaviour every DraftHistory backend shares
func exerciseHistory(t *testing.T, h core.DraftHistory) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, h.Record(ctx, draft("a", "a@example.com", now.Add(-3*time.Minute), time.Hour)))
	require.NoError(t, h.Record(ctx, draft("b", "b@example.com", now.Add(-2*time.Minute), time.Hour)))
	require.NoError(t, h.Record(ctx, draft("c", "c@example.com", now.Add(-1*time.Minute), time.Hour)))
	require.NoError(t, h.Record(ctx, draft("old", "old@example.com", now.Add(-2*time.Hour), time.Hour)))

	recent, err := h.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)
	assert.Equal(t, "c@example.com", recent[0].To)
	assert.Equal(t, "Hello c@example.com", recent[0].Body)

	all, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3, "expired drafts must not be listed")

	for _, limit := range []int{0, -1} {
		none, err := h.Recent(ctx, limit)
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none, "limit %d", limit)
	}

	require.NoError(t, h.Delete(ctx, "c"))
	recent, err = h.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].ID)

	require.NoError(t, h.Cleanup(ctx))
	require.NoError(t, h.Delete(ctx, "does-not-exist"))
}

func TestMemoryHistory(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := NewMemoryHistory(zaptest.NewLogger(t), time.Hour)
	exerciseHistory(t, h)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
}

func TestMemoryHistory_CleanupRemovesExpired(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := NewMemoryHistory(zaptest.NewLogger(t), 0)
	defer h.Close()

	ctx := context.Background()
	require.NoError(t, h.Record(ctx, draft("gone", "x@example.com", time.Now().Add(-time.Hour), time.Minute)))
	require.NoError(t, h.Record(ctx, draft("kept", "y@example.com", time.Now(), time.Hour)))

	require.NoError(t, h.Cleanup(ctx))

	h.mu.RLock()
	defer h.mu.RUnlock()
	assert.NotContains(t, h.entries, "gone")
	assert.Contains(t, h.entries, "kept")
}

func TestMemoryHistory_RecordCopies(t *testing.T) {
	h := NewMemoryHistory(zaptest.NewLogger(t), 0)
	defer h.Close()

	ctx := context.Background()
	r := draft("a", "a@example.com", time.Now(), time.Hour)
	require.NoError(t, h.Record(ctx, r))
	r.Body = "mutated"

	recent, err := h.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Hello a@example.com", recent[0].Body)
}

func TestSQLiteHistory(t *testing.T) {
	h, err := NewSQLiteHistory(filepath.Join(t.TempDir(), "history.db"), zaptest.NewLogger(t), 0)
	if err != nil && strings.Contains(err.Error(), "CGO") {
		t.Skip("go-sqlite3 requires cgo")
	}
	require.NoError(t, err)
	defer h.Close()

	exerciseHistory(t, h)
}

func TestMySQLHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS drafts")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	h, err := NewMySQLHistoryFromDB(db, zaptest.NewLogger(t), 0)
	require.NoError(t, err)

	ctx := context.Background()
	created := time.Unix(1700000000, 0)
	r := draft("id-1", "jane@example.com", created, time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("REPLACE INTO drafts")).
		WithArgs("id-1", "jane@example.com", "Hello jane@example.com", created.UnixNano(), created.Add(time.Hour).UnixNano()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, h.Record(ctx, r))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, recipient, body, created_at, expires_at")).
		WithArgs(sqlmock.AnyArg(), 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient", "body", "created_at", "expires_at"}).
			AddRow("id-1", "jane@example.com", "Hello jane@example.com", created.UnixNano(), created.Add(time.Hour).UnixNano()))
	recent, err := h.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "jane@example.com", recent[0].To)
	assert.True(t, recent[0].CreatedAt.Equal(created))

	none, err := h.Recent(ctx, -1)
	require.NoError(t, err)
	assert.Empty(t, none)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM drafts WHERE id = ?")).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, h.Delete(ctx, "id-1"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM drafts WHERE expires_at <= ?")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	require.NoError(t, h.Cleanup(ctx))

	mock.ExpectClose()
	require.NoError(t, h.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLHistory_SchemaError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS drafts")).
		WillReturnError(assert.AnError)

	_, err = NewMySQLHistoryFromDB(db, zaptest.NewLogger(t), 0)
	assert.ErrorContains(t, err, "failed to create table")
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisHistory) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	h := NewRedisHistoryFromClient(client, "test", zaptest.NewLogger(t), 0)
	t.Cleanup(func() { _ = h.Close() })
	return mr, h
}

func TestRedisHistory(t *testing.T) {
	_, h := newTestRedis(t)
	exerciseHistory(t, h)
}

func TestRedisHistory_Expiry(t *testing.T) {
	mr, h := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, draft("short", "s@example.com", time.Now(), time.Minute)))
	assert.True(t, mr.Exists("test:draft:short"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("test:draft:short"))

	recent, err := h.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)

	require.NoError(t, h.Cleanup(ctx))
	members, err := mr.ZMembers("test:drafts")
	if err == nil {
		assert.Empty(t, members)
	}
}
