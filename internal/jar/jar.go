package jar

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/core-coin/stips/internal/config"
	"github.com/core-coin/stips/internal/models"
	"github.com/core-coin/stips/pkg/logger"
	"github.com/core-coin/stips/pkg/validation"
)

// Jar is the registry and payment-settlement engine. It serves all business
// logic: handle allocation, tip settlement with the fee split, failed-transfer
// escrow and the emergency withdrawal timelock.
//
// Two levels of exclusion protect shared state. Entry points that perform
// outbound transfers (SendTip, WithdrawEscrow, ExecuteEmergencyWithdrawal)
// share a single busy flag: a transfer hands control to arbitrary code, and
// any attempt to re-enter one of these operations before the original
// finishes fails with ErrReentrant instead of blocking. Every read-modify-
// write of persisted state additionally runs under mu; transfers themselves
// run outside mu, and the guarded operations re-read state afterwards, so an
// administrative change landing mid-delivery is never clobbered.
var _ models.JarService = (*Jar)(nil)

type Jar struct {
	logger *logger.Logger

	repo     models.Repository
	transfer models.TransferService
	events   models.EventSink
	reserved models.ReservedList

	minTip        uint64
	timelockDelay int64

	mu   sync.Mutex
	busy atomic.Bool
	now  func() int64
}

// NewJar creates the engine over the given repository and transfer service.
// Persisted state wins over config on restart: fee rate, fee recipient,
// authority and pause flag are only seeded from config on first run.
// events and reserved may be nil.
func NewJar(
	repo models.Repository,
	transfer models.TransferService,
	events models.EventSink,
	reserved models.ReservedList,
	logger *logger.Logger,
	cfg *config.Config,
) (*Jar, error) {
	j := &Jar{
		repo:          repo,
		transfer:      transfer,
		events:        events,
		reserved:      reserved,
		logger:        logger,
		minTip:        cfg.MinTipAmount,
		timelockDelay: cfg.TimelockDelaySeconds,
		now:           func() int64 { return time.Now().Unix() },
	}

	if _, err := repo.JarState(); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to load jar state: %w", err)
		}
		state := &models.JarState{
			ID:           1,
			FeeRateBp:    cfg.FeeRateBasisPoints,
			FeeRecipient: validation.NormalizeIdentity(cfg.FeeRecipient),
			Authority:    validation.NormalizeIdentity(cfg.Authority),
		}
		if err := repo.SaveJarState(state); err != nil {
			return nil, fmt.Errorf("failed to seed jar state: %w", err)
		}
		logger.Info("Seeded initial jar state ", "feeRateBp ", state.FeeRateBp, "feeRecipient ", state.FeeRecipient)
	}

	return j, nil
}

// enter claims the exclusive-execution flag. It never waits: a second entry
// while an operation is in flight is a reentrancy attempt and fails.
func (j *Jar) enter() error {
	if !j.busy.CompareAndSwap(false, true) {
		return models.ErrReentrant
	}
	return nil
}

func (j *Jar) exit() {
	j.busy.Store(false)
}

func (j *Jar) state() (*models.JarState, error) {
	state, err := j.repo.JarState()
	if err != nil {
		j.logger.Error("Failed to load jar state ", "error ", err)
		return nil, err
	}
	return state, nil
}

func (j *Jar) requireAuthority(state *models.JarState, caller string) error {
	if validation.NormalizeIdentity(caller) != state.Authority {
		j.logger.Warn("Unauthorized privileged call ", "caller ", caller)
		return models.ErrUnauthorized
	}
	return nil
}

// debitPool subtracts a delivered amount from the pool. The accounting can
// never legitimately underflow; if it would, something upstream already
// corrupted the ledger, so the subtraction clamps to zero and screams rather
// than wrapping to 2^64.
func (j *Jar) debitPool(state *models.JarState, amount uint64) {
	if amount > state.PoolBalance {
		j.logger.Error("Pool balance underflow, clamping to zero ", "amount ", amount, "pool ", state.PoolBalance)
		state.PoolBalance = 0
		return
	}
	state.PoolBalance -= amount
}

func (j *Jar) releaseEscrowHeld(state *models.JarState, amount uint64) {
	if amount > state.EscrowHeld {
		j.logger.Error("Escrow-held underflow, clamping to zero ", "amount ", amount, "held ", state.EscrowHeld)
		state.EscrowHeld = 0
		return
	}
	state.EscrowHeld -= amount
}

func (j *Jar) emit(event *models.Event) {
	if j.events == nil {
		return
	}
	if event.Timestamp == 0 {
		event.Timestamp = j.now()
	}
	j.events.Emit(event)
}
