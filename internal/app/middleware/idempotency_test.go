package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayloom/internal/app/commands"
	"stayloom/internal/app/middleware"
	"stayloom/internal/infra/storage/memory"
)

type pingCommand struct {
	ID      string
	IdemKey string
}

func (c pingCommand) Key() string { return "test.ping" }

func (c pingCommand) IdempotencyKey() string { return c.IdemKey }

func (c pingCommand) ResultPrototype() any { return &pingResult{} }

type pingResult struct {
	ID    string `json:"id"`
	Calls int    `json:"calls"`
}

type pingHandler struct {
	calls int
	fail  error
}

func (h *pingHandler) Handle(ctx context.Context, cmd pingCommand) (*pingResult, error) {
	h.calls++
	if h.fail != nil {
		return nil, h.fail
	}
	return &pingResult{ID: cmd.ID, Calls: h.calls}, nil
}

func newIdempotentBus(handler *pingHandler) commands.Bus {
	base := commands.NewInMemoryBus()
	commands.RegisterHandler[pingCommand, *pingResult](base, pingCommand{}.Key(), handler)
	return middleware.ChainCommands(base, middleware.Idempotency(memory.NewIdempotencyStore(), nil))
}

func TestIdempotencyReplaysCachedResult(t *testing.T) {
	handler := &pingHandler{}
	bus := newIdempotentBus(handler)
	cmd := pingCommand{ID: "a", IdemKey: "idem-1"}

	first, err := commands.Dispatch[pingCommand, *pingResult](context.Background(), bus, cmd)
	require.NoError(t, err)

	second, err := commands.Dispatch[pingCommand, *pingResult](context.Background(), bus, cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, handler.calls)
	assert.Equal(t, first.Calls, second.Calls)
	assert.Equal(t, "a", second.ID)
}

func TestIdempotencyDistinctKeysRunSeparately(t *testing.T) {
	handler := &pingHandler{}
	bus := newIdempotentBus(handler)

	_, err := commands.Dispatch[pingCommand, *pingResult](context.Background(), bus, pingCommand{ID: "a", IdemKey: "idem-1"})
	require.NoError(t, err)
	_, err = commands.Dispatch[pingCommand, *pingResult](context.Background(), bus, pingCommand{ID: "a", IdemKey: "idem-2"})
	require.NoError(t, err)

	assert.Equal(t, 2, handler.calls)
}

func TestIdempotencyEmptyKeyBypassesCache(t *testing.T) {
	handler := &pingHandler{}
	bus := newIdempotentBus(handler)
	cmd := pingCommand{ID: "a"}

	_, err := commands.Dispatch[pingCommand, *pingResult](context.Background(), bus, cmd)
	require.NoError(t, err)
	_, err = commands.Dispatch[pingCommand, *pingResult](context.Background(), bus, cmd)
	require.NoError(t, err)

	assert.Equal(t, 2, handler.calls)
}

func TestIdempotencyCachesErrors(t *testing.T) {
	handler := &pingHandler{fail: errors.New("boom")}
	bus := newIdempotentBus(handler)
	cmd := pingCommand{ID: "a", IdemKey: "idem-err"}

	_, err := commands.Dispatch[pingCommand, *pingResult](context.Background(), bus, cmd)
	require.EqualError(t, err, "boom")

	_, err = commands.Dispatch[pingCommand, *pingResult](context.Background(), bus, cmd)
	require.EqualError(t, err, "boom")
	assert.Equal(t, 1, handler.calls)
}
