package jar

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentTips(t *testing.T) {
	j, _, _ := newTestJar(t)

	_, err := j.Register(aliceID, "alice", "")
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		_, err := j.SendTip(bobID, "alice", fmt.Sprintf("tip %d", i), 10000)
		require.NoError(t, err)
	}

	recent, err := j.RecentTips("ALICE")
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, "tip 11", recent[0].Message)
	assert.Equal(t, "tip 2", recent[9].Message)

	count, err := j.TipCount("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
}

func TestTipsSlicePagination(t *testing.T) {
	j, _, _ := newTestJar(t)

	_, err := j.Register(aliceID, "alice", "")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := j.SendTip(bobID, "alice", fmt.Sprintf("tip %d", i), 10000)
		require.NoError(t, err)
	}

	page, err := j.TipsSlice("alice", 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "tip 4", page[0].Message)
	assert.Equal(t, "tip 3", page[1].Message)

	page, err = j.TipsSlice("alice", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "tip 2", page[0].Message)
	assert.Equal(t, "tip 1", page[1].Message)

	page, err = j.TipsSlice("alice", 4, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "tip 0", page[0].Message)

	page, err = j.TipsSlice("alice", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestTipHistorySurvivesDeregistration(t *testing.T) {
	j, _, _ := newTestJar(t)

	_, err := j.Register(aliceID, "alice", "")
	require.NoError(t, err)
	_, err = j.SendTip(bobID, "alice", "before", 10000)
	require.NoError(t, err)
	require.NoError(t, j.Deregister(aliceID))

	count, err := j.TipCount("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// A new registration of the same handle continues the same history but
	// starts its own payout accumulator.
	profile, err := j.Register(carolID, "Alice", "")
	require.NoError(t, err)
	assert.Zero(t, profile.TotalReceived)

	_, err = j.SendTip(bobID, "alice", "after", 10000)
	require.NoError(t, err)

	count, err = j.TipCount("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestHandlesAndStats(t *testing.T) {
	j, _, transfer := newTestJar(t)

	for i, id := range []string{aliceID, bobID, carolID} {
		_, err := j.Register(id, fmt.Sprintf("jar%d", i), "")
		require.NoError(t, err)
	}

	handles, err := j.Handles()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"jar0", "jar1", "jar2"}, handles)
	count, err := j.HandleCount()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	transfer.failTo = map[string]bool{norm(aliceID): true}
	_, err = j.SendTip(bobID, "jar0", "", 10000)
	require.NoError(t, err)

	stats, err := j.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.RegisteredJars)
	assert.Equal(t, uint64(1), stats.TipsSettled)
	assert.Equal(t, uint64(10000), stats.GrossVolume)
	assert.Equal(t, uint64(100), stats.FeesAccrued)
	assert.Equal(t, uint64(9900), stats.PoolBalance)
	assert.Equal(t, uint64(9900), stats.EscrowHeld)
	assert.False(t, stats.Paused)
	assert.False(t, stats.TimelockUsed)
}

func TestAuthority(t *testing.T) {
	j, _, _ := newTestJar(t)

	authority, err := j.Authority()
	require.NoError(t, err)
	assert.Equal(t, norm(authorityID), authority)

	require.NoError(t, j.TransferAuthority(authorityID, bobID))
	require.NoError(t, j.AcceptAuthority(bobID))

	authority, err = j.Authority()
	require.NoError(t, err)
	assert.Equal(t, norm(bobID), authority)
}
