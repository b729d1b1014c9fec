package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/chatgate"
	"github.com/fwojciec/chatgate/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = 30 * time.Minute

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func userTurn(t *testing.T, text string) chatgate.Turn {
	t.Helper()
	turn, err := chatgate.NewUserTurn(chatgate.TextPart{Text: text})
	require.NoError(t, err)
	return turn
}

func modelTurn(t *testing.T, text string) chatgate.Turn {
	t.Helper()
	turn, err := chatgate.NewModelTurn(chatgate.TextPart{Text: text})
	require.NoError(t, err)
	return turn
}

func TestStore_GetOrCreate_NewSessionIsEmpty(t *testing.T) {
	t.Parallel()
	clk := newClock()
	s := memory.New(testTTL, memory.WithClock(clk.Now))

	conv := s.GetOrCreate("u1")
	assert.Equal(t, "u1", conv.SessionID)
	assert.Empty(t, conv.History)
	assert.Equal(t, clk.Now(), conv.CreatedAt)
	assert.Equal(t, clk.Now().Add(testTTL), conv.ExpiresAt)
	assert.Equal(t, 1, s.Len())
}

func TestStore_GetOrCreate_RefreshesExpiry(t *testing.T) {
	t.Parallel()
	clk := newClock()
	s := memory.New(testTTL, memory.WithClock(clk.Now))

	first := s.GetOrCreate("u1")
	clk.Advance(20 * time.Minute)
	second := s.GetOrCreate("u1")

	assert.Equal(t, first.Generation, second.Generation)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, clk.Now(), second.LastAccessedAt)
	assert.Equal(t, clk.Now().Add(testTTL), second.ExpiresAt)

	// Still alive 20 minutes later because the window slid.
	clk.Advance(20 * time.Minute)
	third := s.GetOrCreate("u1")
	assert.Equal(t, first.Generation, third.Generation)
}

func TestStore_Append(t *testing.T) {
	t.Parallel()
	s := memory.New(testTTL)

	conv := s.GetOrCreate("u1")
	ok := s.Append("u1", conv.Generation, userTurn(t, "hello"), modelTurn(t, "hi"))
	require.True(t, ok)

	got, ok := s.Get("u1")
	require.True(t, ok)
	require.Len(t, got.History, 2)
	assert.Equal(t, chatgate.RoleUser, got.History[0].Role)
	assert.Equal(t, "hello", got.History[0].Text())
	assert.Equal(t, chatgate.RoleModel, got.History[1].Role)
	assert.Equal(t, "hi", got.History[1].Text())
}

func TestStore_Append_UnknownSession(t *testing.T) {
	t.Parallel()
	s := memory.New(testTTL)

	ok := s.Append("missing", 1, userTurn(t, "hello"))
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len(), "append must not create a session")
}

func TestStore_Append_AfterExpiryIsNoop(t *testing.T) {
	t.Parallel()
	clk := newClock()
	s := memory.New(testTTL, memory.WithClock(clk.Now))

	conv := s.GetOrCreate("u1")
	clk.Advance(testTTL + time.Second)

	ok := s.Append("u1", conv.Generation, userTurn(t, "late"))
	assert.False(t, ok)

	fresh := s.GetOrCreate("u1")
	assert.Empty(t, fresh.History)
	assert.NotEqual(t, conv.Generation, fresh.Generation)
}

func TestStore_Append_StaleGenerationIsNoop(t *testing.T) {
	t.Parallel()
	clk := newClock()
	s := memory.New(testTTL, memory.WithClock(clk.Now))

	old := s.GetOrCreate("u1")
	clk.Advance(testTTL + time.Second)
	fresh := s.GetOrCreate("u1")

	assert.False(t, s.Append("u1", old.Generation, userTurn(t, "stale")))
	assert.True(t, s.Append("u1", fresh.Generation, userTurn(t, "current")))

	got, ok := s.Get("u1")
	require.True(t, ok)
	require.Len(t, got.History, 1)
	assert.Equal(t, "current", got.History[0].Text())
}

func TestStore_SnapshotIsIsolated(t *testing.T) {
	t.Parallel()
	s := memory.New(testTTL)

	conv := s.GetOrCreate("u1")
	require.True(t, s.Append("u1", conv.Generation, userTurn(t, "a"), modelTurn(t, "b")))

	snap := s.GetOrCreate("u1")
	snap.History[0] = userTurn(t, "mutated")
	snap.History = append(snap.History, userTurn(t, "extra"))

	got, ok := s.Get("u1")
	require.True(t, ok)
	require.Len(t, got.History, 2)
	assert.Equal(t, "a", got.History[0].Text())
}

func TestStore_ExpiryYieldsFreshConversation(t *testing.T) {
	t.Parallel()
	clk := newClock()
	s := memory.New(testTTL, memory.WithClock(clk.Now))

	conv := s.GetOrCreate("u1")
	require.True(t, s.Append("u1", conv.Generation, userTurn(t, "hello"), modelTurn(t, "hi")))

	clk.Advance(testTTL + time.Nanosecond)

	_, ok := s.Get("u1")
	assert.False(t, ok, "expired session must not be visible")

	fresh := s.GetOrCreate("u1")
	assert.Empty(t, fresh.History)
	assert.Equal(t, clk.Now(), fresh.CreatedAt)
}

func TestStore_Get_DoesNotRefresh(t *testing.T) {
	t.Parallel()
	clk := newClock()
	s := memory.New(testTTL, memory.WithClock(clk.Now))

	conv := s.GetOrCreate("u1")
	clk.Advance(10 * time.Minute)
	got, ok := s.Get("u1")
	require.True(t, ok)
	assert.Equal(t, conv.ExpiresAt, got.ExpiresAt)
}

func TestStore_Get_Missing(t *testing.T) {
	t.Parallel()
	s := memory.New(testTTL)
	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()
	s := memory.New(testTTL)

	conv := s.GetOrCreate("u1")
	require.True(t, s.Append("u1", conv.Generation, userTurn(t, "hello")))

	assert.True(t, s.Delete("u1"))
	assert.False(t, s.Delete("u1"))
	assert.False(t, s.Append("u1", conv.Generation, userTurn(t, "after delete")))

	fresh := s.GetOrCreate("u1")
	assert.Empty(t, fresh.History)
}

func TestStore_Sweep(t *testing.T) {
	t.Parallel()
	clk := newClock()
	s := memory.New(testTTL, memory.WithClock(clk.Now))

	s.GetOrCreate("old-1")
	s.GetOrCreate("old-2")
	clk.Advance(20 * time.Minute)
	s.GetOrCreate("young")
	clk.Advance(15 * time.Minute)

	assert.Equal(t, 2, s.Sweep())
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("young")
	assert.True(t, ok)
}

func TestStore_Run_StopsOnCancel(t *testing.T) {
	t.Parallel()
	clk := newClock()
	s := memory.New(testTTL, memory.WithClock(clk.Now))
	s.GetOrCreate("u1")
	clk.Advance(testTTL + time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Millisecond) }()

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStore_New_NonPositiveTTLUsesDefault(t *testing.T) {
	t.Parallel()
	clk := newClock()
	s := memory.New(0, memory.WithClock(clk.Now))

	conv := s.GetOrCreate("u1")
	assert.Equal(t, clk.Now().Add(chatgate.DefaultSessionTTL), conv.ExpiresAt)
}

func TestStore_ConcurrentAppendsSameSession(t *testing.T) {
	t.Parallel()
	const n = 50
	s := memory.New(testTTL)
	conv := s.GetOrCreate("u1")

	questions := make([]chatgate.Turn, n)
	answers := make([]chatgate.Turn, n)
	for i := range n {
		questions[i] = userTurn(t, fmt.Sprintf("q%d", i))
		answers[i] = modelTurn(t, fmt.Sprintf("a%d", i))
	}

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.GetOrCreate("u1")
			s.Append("u1", conv.Generation, questions[i], answers[i])
		}()
	}
	wg.Wait()

	got, ok := s.Get("u1")
	require.True(t, ok)
	require.Len(t, got.History, 2*n)

	seen := make(map[string]bool)
	for i := 0; i < len(got.History); i += 2 {
		q, a := got.History[i], got.History[i+1]
		require.Equal(t, chatgate.RoleUser, q.Role)
		require.Equal(t, chatgate.RoleModel, a.Role)
		// Pairs are appended atomically, so each answer follows its question.
		assert.Equal(t, "a"+q.Text()[1:], a.Text())
		assert.False(t, seen[q.Text()], "duplicate turn %s", q.Text())
		seen[q.Text()] = true
	}
}

func TestStore_ConcurrentDistinctSessions(t *testing.T) {
	t.Parallel()
	const n = 32
	s := memory.New(testTTL)
	turn := userTurn(t, "hello")

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			conv := s.GetOrCreate(id)
			s.Append(id, conv.Generation, turn)
		}()
	}
	wg.Wait()

	assert.Equal(t, n, s.Len())
	for i := range n {
		got, ok := s.Get(fmt.Sprintf("s%d", i))
		require.True(t, ok)
		assert.Len(t, got.History, 1)
	}
}
