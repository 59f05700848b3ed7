package jar

import (
	"github.com/core-coin/stips/internal/models"
)

// Read-only views. Tip history queries work on the handle string directly so
// they stay answerable after the handle is deleted; a handle vanishing from
// the enumeration mid-scan is acceptable, history entries never vanish.

const recentTipLimit = 10

func (j *Jar) TipCount(handle string) (int64, error) {
	return j.repo.TipCount(handle)
}

// RecentTips returns up to the 10 newest tips for the handle, newest first.
func (j *Jar) RecentTips(handle string) ([]*models.TipRecord, error) {
	return j.repo.TipsSlice(handle, 0, recentTipLimit)
}

func (j *Jar) TipsSlice(handle string, offset, limit int) ([]*models.TipRecord, error) {
	return j.repo.TipsSlice(handle, offset, limit)
}

func (j *Jar) Handles() ([]string, error) {
	return j.repo.Handles()
}

func (j *Jar) HandleCount() (int64, error) {
	return j.repo.HandleCount()
}

// Stats reports the aggregate ledger counters.
func (j *Jar) Stats() (*models.Stats, error) {
	state, err := j.state()
	if err != nil {
		return nil, err
	}
	jars, err := j.repo.HandleCount()
	if err != nil {
		return nil, err
	}
	return &models.Stats{
		RegisteredJars: jars,
		TipsSettled:    state.TipsSettled,
		GrossVolume:    state.GrossVolume,
		FeesAccrued:    state.FeesAccrued,
		PoolBalance:    state.PoolBalance,
		EscrowHeld:     state.EscrowHeld,
		Paused:         state.Paused,
		TimelockUsed:   state.TimelockUsed,
	}, nil
}

// Authority returns the current controlling identity.
func (j *Jar) Authority() (string, error) {
	state, err := j.state()
	if err != nil {
		return "", err
	}
	return state.Authority, nil
}
