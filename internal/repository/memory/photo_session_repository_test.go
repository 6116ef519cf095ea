package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginOrConsumeFirstPhotoOpensSession(t *testing.T) {
	repo := NewPhotoSessionRepository()

	session, consumed := repo.BeginOrConsume("user-1", []byte("before"))

	assert.False(t, consumed)
	assert.Nil(t, session)

	pending, found := repo.Peek("user-1")
	require.True(t, found)
	assert.Equal(t, []byte("before"), pending.BeforeImage)
}

func TestBeginOrConsumeSecondPhotoClosesSession(t *testing.T) {
	repo := NewPhotoSessionRepository()
	repo.BeginOrConsume("user-1", []byte("before"))

	session, consumed := repo.BeginOrConsume("user-1", []byte("after"))

	require.True(t, consumed)
	require.NotNil(t, session)
	// The returned session carries the first photo; the second one is
	// the caller's to pair with it.
	assert.Equal(t, []byte("before"), session.BeforeImage)

	_, found := repo.Peek("user-1")
	assert.False(t, found)
}

func TestBeginOrConsumeThirdPhotoOpensAgain(t *testing.T) {
	repo := NewPhotoSessionRepository()
	repo.BeginOrConsume("user-1", []byte("one"))
	repo.BeginOrConsume("user-1", []byte("two"))

	session, consumed := repo.BeginOrConsume("user-1", []byte("three"))

	assert.False(t, consumed)
	assert.Nil(t, session)
}

func TestConsume(t *testing.T) {
	repo := NewPhotoSessionRepository()
	repo.BeginOrConsume("user-1", []byte("before"))

	session, found := repo.Consume("user-1")

	require.True(t, found)
	assert.Equal(t, []byte("before"), session.BeforeImage)

	_, foundAgain := repo.Consume("user-1")
	assert.False(t, foundAgain)
}

func TestConsumeWithoutSession(t *testing.T) {
	repo := NewPhotoSessionRepository()

	session, found := repo.Consume("user-1")

	assert.False(t, found)
	assert.Nil(t, session)
}

func TestSessionsAreKeyedPerUser(t *testing.T) {
	repo := NewPhotoSessionRepository()
	repo.BeginOrConsume("user-1", []byte("a"))
	repo.BeginOrConsume("user-2", []byte("b"))

	session, consumed := repo.BeginOrConsume("user-1", []byte("after"))
	require.True(t, consumed)
	assert.Equal(t, []byte("a"), session.BeforeImage)

	other, found := repo.Peek("user-2")
	require.True(t, found)
	assert.Equal(t, []byte("b"), other.BeforeImage)
}

func TestSessionCreatedAtUsesClock(t *testing.T) {
	fixed := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	repo := NewPhotoSessionRepositoryWithClock(func() time.Time { return fixed })

	repo.BeginOrConsume("user-1", []byte("before"))

	session, found := repo.Peek("user-1")
	require.True(t, found)
	assert.Equal(t, fixed, session.CreatedAt)
}
