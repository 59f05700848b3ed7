package jar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/core-coin/stips/internal/models"
	"github.com/core-coin/stips/internal/repository"
)

// timelockFixture pins the clock and puts sweepable funds in the pool, the
// kind a failed delivery leaves behind when its escrow credit also failed.
func timelockFixture(t *testing.T) (*Jar, *repository.MemoryRepository, *fakeTransfer, *int64) {
	t.Helper()
	j, repo, transfer := newTestJar(t)

	now := int64(1_000_000)
	j.now = func() int64 { return now }

	state, err := repo.JarState()
	require.NoError(t, err)
	state.PoolBalance = 10000
	require.NoError(t, repo.SaveJarState(state))

	return j, repo, transfer, &now
}

func TestInitiateEmergencyWithdrawal(t *testing.T) {
	j, repo, _, now := timelockFixture(t)

	unlockAt, err := j.InitiateEmergencyWithdrawal(authorityID)
	require.NoError(t, err)
	assert.Equal(t, *now+testTimelockDelay, unlockAt)

	state, err := repo.JarState()
	require.NoError(t, err)
	assert.Equal(t, unlockAt, state.UnlockTimestamp)

	// Pending and executable windows both refuse re-initiation.
	*now = unlockAt - 1
	_, err = j.InitiateEmergencyWithdrawal(authorityID)
	assert.ErrorIs(t, err, models.ErrAlreadyPending)
	*now = unlockAt + testTimelockDelay
	_, err = j.InitiateEmergencyWithdrawal(authorityID)
	assert.ErrorIs(t, err, models.ErrAlreadyPending)

	// One full delay beyond the unlock time the stale window is replaceable.
	*now = unlockAt + testTimelockDelay + 1
	newUnlock, err := j.InitiateEmergencyWithdrawal(authorityID)
	require.NoError(t, err)
	assert.Equal(t, *now+testTimelockDelay, newUnlock)
}

func TestInitiateEmergencyWithdrawalRejections(t *testing.T) {
	j, _, _ := newTestJar(t)

	_, err := j.InitiateEmergencyWithdrawal(aliceID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// Empty pool, nothing to sweep.
	_, err = j.InitiateEmergencyWithdrawal(authorityID)
	assert.ErrorIs(t, err, models.ErrNothingToWithdraw)
}

func TestInitiateEmergencyWithdrawalFullyEscrowedPool(t *testing.T) {
	j, _, transfer := newTestJar(t)

	// Every pooled unit backs an escrow claim, so there is nothing the
	// sweep may take.
	transfer.failAll = true
	_, err := j.Register(aliceID, "alice", "")
	require.NoError(t, err)
	_, err = j.SendTip(bobID, "alice", "", 10000)
	require.NoError(t, err)

	_, err = j.InitiateEmergencyWithdrawal(authorityID)
	assert.ErrorIs(t, err, models.ErrNothingToWithdraw)
}

func TestExecuteEmergencyWithdrawal(t *testing.T) {
	j, repo, transfer, now := timelockFixture(t)

	unlockAt, err := j.InitiateEmergencyWithdrawal(authorityID)
	require.NoError(t, err)

	*now = unlockAt - 1
	_, err = j.ExecuteEmergencyWithdrawal(authorityID)
	assert.ErrorIs(t, err, models.ErrStillLocked)

	// Executable exactly at the unlock time.
	*now = unlockAt
	amount, err := j.ExecuteEmergencyWithdrawal(authorityID)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), amount)

	calls := transfer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, transferCall{To: norm(authorityID), Amount: 10000}, calls[0])

	state, err := repo.JarState()
	require.NoError(t, err)
	assert.Zero(t, state.PoolBalance)
	assert.Zero(t, state.UnlockTimestamp)
	assert.True(t, state.TimelockUsed)

	// The machine is idle again, the sweep cannot run twice.
	_, err = j.ExecuteEmergencyWithdrawal(authorityID)
	assert.ErrorIs(t, err, models.ErrNotInitiated)
}

func TestExecuteEmergencyWithdrawalRejections(t *testing.T) {
	j, _, _, now := timelockFixture(t)

	_, err := j.ExecuteEmergencyWithdrawal(authorityID)
	assert.ErrorIs(t, err, models.ErrNotInitiated)

	unlockAt, err := j.InitiateEmergencyWithdrawal(authorityID)
	require.NoError(t, err)
	*now = unlockAt

	_, err = j.ExecuteEmergencyWithdrawal(aliceID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestExecuteEmergencyWithdrawalTransferFailure(t *testing.T) {
	j, repo, transfer, now := timelockFixture(t)

	unlockAt, err := j.InitiateEmergencyWithdrawal(authorityID)
	require.NoError(t, err)
	*now = unlockAt

	transfer.failAll = true
	_, err = j.ExecuteEmergencyWithdrawal(authorityID)
	assert.ErrorIs(t, err, models.ErrTransferFailed)

	// Nothing committed, the window stays open for a retry.
	state, err := repo.JarState()
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), state.PoolBalance)
	assert.Equal(t, unlockAt, state.UnlockTimestamp)
	assert.False(t, state.TimelockUsed)

	transfer.Reset()
	amount, err := j.ExecuteEmergencyWithdrawal(authorityID)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), amount)
}

func TestCancelEmergencyWithdrawal(t *testing.T) {
	j, repo, _, now := timelockFixture(t)

	assert.ErrorIs(t, j.CancelEmergencyWithdrawal(authorityID), models.ErrNothingToCancel)

	unlockAt, err := j.InitiateEmergencyWithdrawal(authorityID)
	require.NoError(t, err)

	assert.ErrorIs(t, j.CancelEmergencyWithdrawal(aliceID), models.ErrUnauthorized)

	// Cancellable from the executable window too, funds stay put.
	*now = unlockAt + 10
	require.NoError(t, j.CancelEmergencyWithdrawal(authorityID))

	state, err := repo.JarState()
	require.NoError(t, err)
	assert.Zero(t, state.UnlockTimestamp)
	assert.Equal(t, uint64(10000), state.PoolBalance)

	_, err = j.ExecuteEmergencyWithdrawal(authorityID)
	assert.ErrorIs(t, err, models.ErrNotInitiated)
}
