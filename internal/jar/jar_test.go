package jar

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/core-coin/stips/internal/config"
	"github.com/core-coin/stips/internal/models"
	"github.com/core-coin/stips/internal/repository"
	"github.com/core-coin/stips/pkg/logger"
	"github.com/core-coin/stips/pkg/validation"
)

const (
	authorityID    = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	feeRecipientID = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	aliceID        = "0xcccccccccccccccccccccccccccccccccccccccccccc"
	bobID          = "0xdddddddddddddddddddddddddddddddddddddddddddd"
	carolID        = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

	testFeeRateBp     = 100 // 1%
	testMinTip        = 10
	testTimelockDelay = 3600
)

var errRPCDown = errors.New("rpc: connection refused")

type transferCall struct {
	To     string
	Amount uint64
}

// fakeTransfer is a scriptable delivery service. onTransfer, when set, runs
// before the outcome is decided so tests can attempt reentrant calls from
// inside a transfer.
type fakeTransfer struct {
	mu         sync.Mutex
	calls      []transferCall
	failAll    bool
	failTo     map[string]bool
	onTransfer func(to string, amount uint64)
}

func (f *fakeTransfer) Transfer(to string, amount uint64) error {
	f.mu.Lock()
	f.calls = append(f.calls, transferCall{To: to, Amount: amount})
	cb := f.onTransfer
	fail := f.failAll || f.failTo[to]
	f.mu.Unlock()

	if cb != nil {
		cb(to, amount)
	}
	if fail {
		return errRPCDown
	}
	return nil
}

func (f *fakeTransfer) Calls() []transferCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]transferCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeTransfer) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.failAll = false
	f.failTo = nil
	f.onTransfer = nil
}

type fakeSink struct {
	mu     sync.Mutex
	events []*models.Event
}

func (f *fakeSink) Emit(event *models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeSink) Types() []models.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.EventType, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

type fakeReserved map[string]bool

func (f fakeReserved) IsReserved(normalized string) bool { return f[normalized] }

func testConfig() *config.Config {
	return &config.Config{
		FeeRateBasisPoints:   testFeeRateBp,
		MinTipAmount:         testMinTip,
		TimelockDelaySeconds: testTimelockDelay,
		Authority:            authorityID,
		FeeRecipient:         feeRecipientID,
	}
}

func newTestJar(t *testing.T) (*Jar, *repository.MemoryRepository, *fakeTransfer) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	transfer := &fakeTransfer{}
	j, err := NewJar(repo, transfer, nil, nil, logger.NewNopLogger(), testConfig())
	require.NoError(t, err)
	return j, repo, transfer
}

func norm(identity string) string {
	return validation.NormalizeIdentity(identity)
}

func TestNewJarSeedsState(t *testing.T) {
	_, repo, _ := newTestJar(t)

	state, err := repo.JarState()
	require.NoError(t, err)
	require.Equal(t, uint64(testFeeRateBp), state.FeeRateBp)
	require.Equal(t, norm(authorityID), state.Authority)
	require.Equal(t, norm(feeRecipientID), state.FeeRecipient)
	require.False(t, state.Paused)
	require.Zero(t, state.PoolBalance)
}

func TestNewJarKeepsPersistedState(t *testing.T) {
	repo := repository.NewMemoryRepository()
	require.NoError(t, repo.SaveJarState(&models.JarState{
		ID:           1,
		FeeRateBp:    250,
		FeeRecipient: norm(carolID),
		Authority:    norm(bobID),
		Paused:       true,
		PoolBalance:  42,
	}))

	_, err := NewJar(repo, &fakeTransfer{}, nil, nil, logger.NewNopLogger(), testConfig())
	require.NoError(t, err)

	state, err := repo.JarState()
	require.NoError(t, err)
	require.Equal(t, uint64(250), state.FeeRateBp)
	require.Equal(t, norm(bobID), state.Authority)
	require.True(t, state.Paused)
	require.Equal(t, uint64(42), state.PoolBalance)
}
