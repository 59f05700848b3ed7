package jar

import (
	"fmt"

	"github.com/core-coin/stips/internal/models"
	"github.com/core-coin/stips/pkg/validation"
)

// WithdrawEscrow pays out the caller's escrowed balance. The balance is
// zeroed before the outbound transfer so a reentrant observer during the
// transfer sees zero and cannot double-withdraw; if the transfer fails the
// whole operation fails, the claim is reinstated and the caller retries.
func (j *Jar) WithdrawEscrow(identity string) (uint64, error) {
	if err := j.enter(); err != nil {
		return 0, err
	}
	defer j.exit()

	recipient, err := validation.ValidateAndNormalizeIdentity(identity)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrInvalidIdentity, err)
	}

	amount, err := j.repo.DebitEscrow(recipient)
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, models.ErrNothingToWithdraw
	}

	if err := j.transfer.Transfer(recipient, amount); err != nil {
		j.logger.Warn("Escrow withdrawal transfer failed ", "identity ", recipient, "amount ", amount, "error ", err)
		if creditErr := j.repo.CreditEscrow(recipient, amount); creditErr != nil {
			j.logger.Error("Failed to reinstate escrow after failed withdrawal ", "identity ", recipient, "amount ", amount, "error ", creditErr)
			return 0, creditErr
		}
		return 0, models.ErrTransferFailed
	}

	j.mu.Lock()
	state, err := j.state()
	if err != nil {
		j.mu.Unlock()
		return 0, err
	}
	j.debitPool(state, amount)
	j.releaseEscrowHeld(state, amount)
	if err := j.repo.SaveJarState(state); err != nil {
		j.mu.Unlock()
		return 0, err
	}
	j.mu.Unlock()

	j.logger.Info("Escrow withdrawn ", "identity ", recipient, "amount ", amount)
	j.emit(&models.Event{Type: models.EventEscrowWithdrawn, Identity: recipient, Amount: amount})
	return amount, nil
}

// EscrowBalanceOf returns the identity's current escrow claim.
func (j *Jar) EscrowBalanceOf(identity string) (uint64, error) {
	recipient, err := validation.ValidateAndNormalizeIdentity(identity)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrInvalidIdentity, err)
	}
	return j.repo.EscrowBalance(recipient)
}
