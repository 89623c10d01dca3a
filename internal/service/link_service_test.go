package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

func newLinkFixture(users map[string]uuid.UUID) (*LinkService, *fakeLinkStore) {
	links := newFakeLinkStore()
	svc := NewLinkService(links, &fakeUserDirectory{users: users}, testLogger())
	return svc, links
}

func TestLinkServiceFullFlow(t *testing.T) {
	ctx := context.Background()
	aliceID := uuid.New()
	svc, links := newLinkFixture(map[string]uuid.UUID{"alice": aliceID})

	const chatID = int64(12345)

	// Fresh chat starts unlinked
	state, err := svc.Status(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkStateUnlinked, state)

	// Begin moves to awaiting_username and persists
	require.NoError(t, svc.Begin(ctx, chatID))
	state, err = svc.Status(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkStateAwaitingUsername, state)

	// Supplying a known username completes the link
	link, err := svc.ProvideUsername(ctx, chatID, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.LinkStateLinked, link.State)
	assert.Equal(t, aliceID, link.UserID)

	// The linked chat is now resolvable for external delivery
	resolved, err := links.ResolveChatID(ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, chatID, resolved)
}

func TestLinkServiceBeginAlreadyLinked(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLinkFixture(map[string]uuid.UUID{"alice": uuid.New()})

	require.NoError(t, svc.Begin(ctx, 1))
	_, err := svc.ProvideUsername(ctx, 1, "alice")
	require.NoError(t, err)

	err = svc.Begin(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrLinkAlreadyLinked)
}

func TestLinkServiceProvideUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("without begin", func(t *testing.T) {
		svc, _ := newLinkFixture(map[string]uuid.UUID{"alice": uuid.New()})

		_, err := svc.ProvideUsername(ctx, 1, "alice")
		assert.ErrorIs(t, err, domain.ErrLinkNotAwaiting)
	})

	t.Run("unknown username keeps the flow open", func(t *testing.T) {
		svc, _ := newLinkFixture(map[string]uuid.UUID{"alice": uuid.New()})

		require.NoError(t, svc.Begin(ctx, 1))

		_, err := svc.ProvideUsername(ctx, 1, "mallory")
		assert.ErrorIs(t, err, ErrUnknownUsername)

		// The chat is still awaiting and can retry with the right name
		state, err := svc.Status(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.LinkStateAwaitingUsername, state)

		_, err = svc.ProvideUsername(ctx, 1, "alice")
		assert.NoError(t, err)
	})

	t.Run("empty username", func(t *testing.T) {
		svc, _ := newLinkFixture(nil)

		require.NoError(t, svc.Begin(ctx, 1))

		_, err := svc.ProvideUsername(ctx, 1, "   ")
		assert.ErrorIs(t, err, ErrEmptyUsername)
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		aliceID := uuid.New()
		svc, _ := newLinkFixture(map[string]uuid.UUID{"alice": aliceID})

		require.NoError(t, svc.Begin(ctx, 1))

		link, err := svc.ProvideUsername(ctx, 1, "  alice  ")
		require.NoError(t, err)
		assert.Equal(t, aliceID, link.UserID)
		assert.Equal(t, "alice", link.Username)
	})
}

func TestLinkServiceUnlink(t *testing.T) {
	ctx := context.Background()
	aliceID := uuid.New()
	svc, links := newLinkFixture(map[string]uuid.UUID{"alice": aliceID})

	// Unlinking a chat that was never seen is a successful no-op
	require.NoError(t, svc.Unlink(ctx, 99))

	require.NoError(t, svc.Begin(ctx, 1))
	_, err := svc.ProvideUsername(ctx, 1, "alice")
	require.NoError(t, err)

	require.NoError(t, svc.Unlink(ctx, 1))

	state, err := svc.Status(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkStateUnlinked, state)

	// External delivery stops resolving after unlink
	_, err = links.ResolveChatID(ctx, aliceID)
	assert.Error(t, err)
}

func TestLinkServiceStateIsPerChat(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLinkFixture(map[string]uuid.UUID{"alice": uuid.New()})

	// One chat mid-flow never affects another chat's state
	require.NoError(t, svc.Begin(ctx, 1))

	state, err := svc.Status(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkStateUnlinked, state)

	_, err = svc.ProvideUsername(ctx, 2, "alice")
	assert.ErrorIs(t, err, domain.ErrLinkNotAwaiting)
}
