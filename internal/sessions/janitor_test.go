package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkarolak/greenroom/internal/domain"
)

func TestJanitor_SweepRemovesOnlyExpired(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	now := time.Now()

	expired := &domain.Session{
		ID:        "expired-session",
		Identity:  domain.Identity{Name: "Alice", Role: domain.RoleUser},
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}
	live := &domain.Session{
		ID:        "live-session",
		Identity:  domain.Identity{Name: "Bob", Role: domain.RoleAdmin},
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, repo.CreateSession(context.Background(), expired))
	require.NoError(t, repo.CreateSession(context.Background(), live))

	janitor := NewJanitor(DefaultJanitorConfig(), repo)

	// Act
	janitor.sweep(context.Background())

	// Assert
	assert.NotContains(t, repo.sessions, "expired-session")
	assert.Contains(t, repo.sessions, "live-session")
	assert.EqualValues(t, 1, repo.deletedExpiry)
}

func TestJanitor_StartStop(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	janitor := NewJanitor(JanitorConfig{Interval: 10 * time.Millisecond}, repo)

	// Act
	janitor.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	janitor.Stop()

	// Assert — Stop returned, so the goroutine is down
}
