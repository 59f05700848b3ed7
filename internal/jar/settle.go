package jar

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/core-coin/stips/internal/models"
	"github.com/core-coin/stips/pkg/validation"
)

const feeDenominator = 10000

// splitAmount computes the fee with floor division, rounding any remainder
// below one basis-point unit in the platform's favor. The 128-bit
// intermediate keeps gross * rate from wrapping.
func splitAmount(gross, feeRateBp uint64) (fee, payout uint64) {
	hi, lo := bits.Mul64(gross, feeRateBp)
	fee, _ = bits.Div64(hi, lo, feeDenominator)
	return fee, gross - fee
}

// SendTip settles a tip to the jar behind handle. The ledger write (tip
// record plus TotalReceived) commits before any delivery attempt and is never
// rolled back by a delivery failure: a failed leg credits the intended
// recipient's escrow instead and the operation still succeeds. The busy flag
// covers the whole span, transfers included; mu is released during the
// delivery legs and the final accounting re-reads state, so administrative
// changes landing mid-delivery survive.
func (j *Jar) SendTip(sender, handle, message string, grossAmount uint64) (*models.TipRecord, error) {
	if err := j.enter(); err != nil {
		return nil, err
	}
	defer j.exit()

	record, owner, feeRecipient, err := j.settle(sender, handle, message, grossAmount)
	if err != nil {
		return nil, err
	}

	j.logger.Info("Tip settled ", "handle ", record.Handle, "gross ", grossAmount, "fee ", record.FeeAmount, "payout ", record.NetAmount)
	j.emit(&models.Event{Type: models.EventTipSettled, Handle: record.Handle, Identity: record.Sender, Amount: grossAmount})

	// Delivery legs, fee recipient first. The ledger above stays
	// authoritative whatever happens here.
	var delivered, escrowed uint64
	if record.FeeAmount > 0 {
		d, e := j.deliver(feeRecipient, record.FeeAmount, "fee")
		delivered, escrowed = delivered+d, escrowed+e
	}
	if record.NetAmount > 0 {
		d, e := j.deliver(owner, record.NetAmount, "payout")
		delivered, escrowed = delivered+d, escrowed+e
	}

	if err := j.reconcileDeliveries(delivered, escrowed); err != nil {
		return nil, err
	}
	return record, nil
}

// settle is the ledger phase of SendTip: validation, the atomic tip write and
// the state accumulators, all under mu.
func (j *Jar) settle(sender, handle, message string, grossAmount uint64) (*models.TipRecord, string, string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.state()
	if err != nil {
		return nil, "", "", err
	}
	if state.Paused {
		return nil, "", "", models.ErrPaused
	}

	from, err := validation.ValidateAndNormalizeIdentity(sender)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", models.ErrInvalidIdentity, err)
	}
	profile, err := j.repo.GetProfile(handle)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, "", "", models.ErrHandleNotFound
		}
		return nil, "", "", err
	}
	if grossAmount < j.minTip {
		return nil, "", "", models.ErrBelowMinimum
	}
	if len(message) > models.MaxMessageLength {
		return nil, "", "", models.ErrMessageTooLong
	}

	fee, payout := splitAmount(grossAmount, state.FeeRateBp)

	// Every accumulator is checked before the first write so an overflow
	// aborts with nothing committed.
	if state.PoolBalance > math.MaxUint64-grossAmount ||
		state.GrossVolume > math.MaxUint64-grossAmount ||
		state.FeesAccrued > math.MaxUint64-fee ||
		state.TipsSettled == math.MaxUint64 {
		return nil, "", "", models.ErrAmountOverflow
	}

	record := &models.TipRecord{
		Handle:      profile.Handle,
		Sender:      from,
		GrossAmount: grossAmount,
		FeeAmount:   fee,
		NetAmount:   payout,
		Message:     message,
		Timestamp:   j.now(),
	}
	if err := j.repo.SettleTip(profile.Handle, payout, record); err != nil {
		return nil, "", "", err
	}

	state.PoolBalance += grossAmount
	state.TipsSettled++
	state.GrossVolume += grossAmount
	state.FeesAccrued += fee
	if err := j.repo.SaveJarState(state); err != nil {
		return nil, "", "", err
	}

	return record, profile.Owner, state.FeeRecipient, nil
}

// deliver attempts one outbound leg and reports how the amount left, or
// didn't: delivered amounts exit the pool, escrowed amounts stay in it under
// a claim.
func (j *Jar) deliver(to string, amount uint64, leg string) (delivered, escrowed uint64) {
	if err := j.transfer.Transfer(to, amount); err != nil {
		j.logger.Warn("Delivery failed, crediting escrow ", "leg ", leg, "to ", to, "amount ", amount, "error ", err)
		if creditErr := j.repo.CreditEscrow(to, amount); creditErr != nil {
			// The pool still holds the funds; the claim has to be
			// reconciled by hand.
			j.logger.Error("Failed to credit escrow after delivery failure ", "to ", to, "amount ", amount, "error ", creditErr)
			return 0, 0
		}
		j.emit(&models.Event{Type: models.EventDeliveryFailed, Identity: to, Amount: amount, Detail: leg})
		return 0, amount
	}
	return amount, 0
}

// reconcileDeliveries applies the outcome of the delivery legs to a fresh
// read of the state, preserving any concurrent administrative change.
func (j *Jar) reconcileDeliveries(delivered, escrowed uint64) error {
	if delivered == 0 && escrowed == 0 {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.state()
	if err != nil {
		return err
	}
	j.debitPool(state, delivered)
	if state.EscrowHeld > math.MaxUint64-escrowed {
		j.logger.Error("Escrow-held overflow, clamping ", "held ", state.EscrowHeld, "amount ", escrowed)
		state.EscrowHeld = math.MaxUint64
	} else {
		state.EscrowHeld += escrowed
	}
	if err := j.repo.SaveJarState(state); err != nil {
		j.logger.Error("Failed to save jar state after delivery ", "error ", err)
		return err
	}
	return nil
}
