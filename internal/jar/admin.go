package jar

import (
	"fmt"

	"github.com/core-coin/stips/internal/models"
	"github.com/core-coin/stips/pkg/validation"
)

// Pause blocks registration and settlement. Escrow withdrawal and the
// timelock stay available: pausing must never trap funds.
func (j *Jar) Pause(caller string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.state()
	if err != nil {
		return err
	}
	if err := j.requireAuthority(state, caller); err != nil {
		return err
	}
	if state.Paused {
		return models.ErrAlreadyPaused
	}

	state.Paused = true
	if err := j.repo.SaveJarState(state); err != nil {
		return err
	}
	j.logger.Warn("Engine paused")
	j.emit(&models.Event{Type: models.EventPaused})
	return nil
}

func (j *Jar) Unpause(caller string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.state()
	if err != nil {
		return err
	}
	if err := j.requireAuthority(state, caller); err != nil {
		return err
	}
	if !state.Paused {
		return models.ErrNotPaused
	}

	state.Paused = false
	if err := j.repo.SaveJarState(state); err != nil {
		return err
	}
	j.logger.Info("Engine unpaused")
	j.emit(&models.Event{Type: models.EventUnpaused})
	return nil
}

// SetFeeRecipient rotates the identity that receives the fee leg of every
// tip. Escrow already credited to the old recipient stays theirs.
func (j *Jar) SetFeeRecipient(caller, identity string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.state()
	if err != nil {
		return err
	}
	if err := j.requireAuthority(state, caller); err != nil {
		return err
	}
	recipient, err := validation.ValidateAndNormalizeIdentity(identity)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidIdentity, err)
	}

	state.FeeRecipient = recipient
	if err := j.repo.SaveJarState(state); err != nil {
		return err
	}
	j.logger.Info("Fee recipient rotated ", "recipient ", recipient)
	j.emit(&models.Event{Type: models.EventFeeRecipientSet, Identity: recipient})
	return nil
}

// TransferAuthority nominates a new controlling identity. The handover only
// completes when the nominee calls AcceptAuthority, so a typo cannot brick
// the privileged surface.
func (j *Jar) TransferAuthority(caller, newAuthority string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.state()
	if err != nil {
		return err
	}
	if err := j.requireAuthority(state, caller); err != nil {
		return err
	}
	nominee, err := validation.ValidateAndNormalizeIdentity(newAuthority)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidIdentity, err)
	}

	state.PendingAuthority = nominee
	if err := j.repo.SaveJarState(state); err != nil {
		return err
	}
	j.logger.Warn("Authority handover nominated ", "nominee ", nominee)
	return nil
}

// AcceptAuthority completes a pending handover; only the nominee may call it.
func (j *Jar) AcceptAuthority(caller string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.state()
	if err != nil {
		return err
	}
	nominee := validation.NormalizeIdentity(caller)
	if state.PendingAuthority == "" || nominee != state.PendingAuthority {
		return models.ErrUnauthorized
	}

	state.Authority = nominee
	state.PendingAuthority = ""
	if err := j.repo.SaveJarState(state); err != nil {
		return err
	}
	j.logger.Warn("Authority handover completed ", "authority ", nominee)
	j.emit(&models.Event{Type: models.EventAuthorityChanged, Identity: nominee})
	return nil
}
