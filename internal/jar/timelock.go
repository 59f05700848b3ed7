package jar

import (
	"github.com/core-coin/stips/internal/models"
)

// The emergency withdrawal timelock is a three-state machine over
// JarState.UnlockTimestamp: idle (zero), pending (now before it) and
// executable (now at or after it). It exists to bound the blast radius of a
// compromised authority: the pool can never be swept without a public
// warning window of at least the configured delay. The sweep only takes the
// portion of the pool not backing escrow claims, so outstanding claims stay
// payable afterwards.

// InitiateEmergencyWithdrawal starts the clock. Re-initiation is only allowed
// once a prior window has fully expired, i.e. a whole extra delay period has
// passed beyond the old unlock time without execution.
func (j *Jar) InitiateEmergencyWithdrawal(caller string) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.state()
	if err != nil {
		return 0, err
	}
	if err := j.requireAuthority(state, caller); err != nil {
		return 0, err
	}
	if sweepable(state) == 0 {
		return 0, models.ErrNothingToWithdraw
	}

	now := j.now()
	if state.UnlockTimestamp != 0 && now <= state.UnlockTimestamp+j.timelockDelay {
		return 0, models.ErrAlreadyPending
	}

	state.UnlockTimestamp = now + j.timelockDelay
	if err := j.repo.SaveJarState(state); err != nil {
		return 0, err
	}

	j.logger.Warn("Emergency withdrawal initiated ", "unlockAt ", state.UnlockTimestamp, "sweepable ", sweepable(state))
	j.emit(&models.Event{Type: models.EventEmergencyInitiated, Amount: sweepable(state), Timestamp: state.UnlockTimestamp})
	return state.UnlockTimestamp, nil
}

// ExecuteEmergencyWithdrawal sweeps the unescrowed pool balance to the
// authority once the unlock time has passed, then returns the machine to idle
// and sets the one-way used flag.
func (j *Jar) ExecuteEmergencyWithdrawal(caller string) (uint64, error) {
	if err := j.enter(); err != nil {
		return 0, err
	}
	defer j.exit()

	j.mu.Lock()
	state, err := j.state()
	if err != nil {
		j.mu.Unlock()
		return 0, err
	}
	if err := j.requireAuthority(state, caller); err != nil {
		j.mu.Unlock()
		return 0, err
	}
	if state.UnlockTimestamp == 0 {
		j.mu.Unlock()
		return 0, models.ErrNotInitiated
	}
	if j.now() < state.UnlockTimestamp {
		j.mu.Unlock()
		return 0, models.ErrStillLocked
	}
	amount := sweepable(state)
	authority := state.Authority
	j.mu.Unlock()

	if amount > 0 {
		if err := j.transfer.Transfer(authority, amount); err != nil {
			// Nothing committed; the window stays executable for a retry.
			j.logger.Error("Emergency withdrawal transfer failed ", "amount ", amount, "error ", err)
			return 0, models.ErrTransferFailed
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	state, err = j.state()
	if err != nil {
		return 0, err
	}
	j.debitPool(state, amount)
	state.UnlockTimestamp = 0
	state.TimelockUsed = true
	if err := j.repo.SaveJarState(state); err != nil {
		return 0, err
	}

	j.logger.Warn("Emergency withdrawal executed ", "amount ", amount)
	j.emit(&models.Event{Type: models.EventEmergencyExecuted, Amount: amount})
	return amount, nil
}

// CancelEmergencyWithdrawal returns the machine to idle from pending or
// executable without moving funds.
func (j *Jar) CancelEmergencyWithdrawal(caller string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.state()
	if err != nil {
		return err
	}
	if err := j.requireAuthority(state, caller); err != nil {
		return err
	}
	if state.UnlockTimestamp == 0 {
		return models.ErrNothingToCancel
	}

	state.UnlockTimestamp = 0
	if err := j.repo.SaveJarState(state); err != nil {
		return err
	}

	j.logger.Info("Emergency withdrawal cancelled")
	j.emit(&models.Event{Type: models.EventEmergencyCancelled})
	return nil
}

// sweepable is the pool portion not backing escrow claims.
func sweepable(state *models.JarState) uint64 {
	if state.EscrowHeld >= state.PoolBalance {
		return 0
	}
	return state.PoolBalance - state.EscrowHeld
}
