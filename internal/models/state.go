package models

// EscrowBalance is the per-identity pool of amounts whose delivery failed.
// Fee-recipient and jar-owner claims share the same pool keyed by the intended
// recipient. A zero balance means no claim; rows are never removed.
type EscrowBalance struct {
	// Identity is the intended recipient of the undelivered amounts.
	Identity string `json:"identity" gorm:"column:identity;primaryKey"`
	// Amount is the withdrawable balance in the smallest indivisible unit.
	Amount uint64 `json:"amount" gorm:"column:amount"`
}

// JarState is the singleton row of global engine state. It must survive
// restarts: pause flag, fee routing, authority, pool accounting and the
// emergency withdrawal timelock all live here.
type JarState struct {
	// ID is always 1.
	ID int64 `json:"-" gorm:"column:id;primaryKey"`
	// Paused blocks registration and settlement while set.
	Paused bool `json:"paused" gorm:"column:paused"`
	// FeeRateBp is the platform fee in basis points (1/10000).
	FeeRateBp uint64 `json:"fee_rate_bp" gorm:"column:fee_rate_bp"`
	// FeeRecipient is the identity that receives the fee leg of every tip.
	FeeRecipient string `json:"fee_recipient" gorm:"column:fee_recipient"`
	// Authority is the controlling identity for privileged operations.
	Authority string `json:"authority" gorm:"column:authority"`
	// PendingAuthority is the identity nominated in a two-step handover,
	// empty when no handover is in flight.
	PendingAuthority string `json:"pending_authority,omitempty" gorm:"column:pending_authority"`
	// PoolBalance is the value currently held by the engine: every settled
	// tip adds its gross amount, every successful delivery, escrow withdrawal
	// or emergency sweep subtracts what left. Escrowed claims stay inside.
	PoolBalance uint64 `json:"pool_balance" gorm:"column:pool_balance"`
	// EscrowHeld is the portion of PoolBalance backing outstanding escrow
	// claims. Invariant: EscrowHeld <= PoolBalance. The emergency sweep only
	// takes the difference, so claims stay payable after a sweep.
	EscrowHeld uint64 `json:"escrow_held" gorm:"column:escrow_held"`
	// UnlockTimestamp is the emergency withdrawal unlock time; zero means the
	// timelock is idle.
	UnlockTimestamp int64 `json:"unlock_timestamp,omitempty" gorm:"column:unlock_timestamp"`
	// TimelockUsed is a one-way audit flag set on the first executed
	// emergency withdrawal.
	TimelockUsed bool `json:"timelock_used" gorm:"column:timelock_used"`
	// TipsSettled counts settled tips across all jars.
	TipsSettled uint64 `json:"tips_settled" gorm:"column:tips_settled"`
	// GrossVolume accumulates gross tip amounts across all jars.
	GrossVolume uint64 `json:"gross_volume" gorm:"column:gross_volume"`
	// FeesAccrued accumulates fee amounts across all jars.
	FeesAccrued uint64 `json:"fees_accrued" gorm:"column:fees_accrued"`
}

// Stats is the aggregate report exposed by the read API.
type Stats struct {
	RegisteredJars int64  `json:"registered_jars"`
	TipsSettled    uint64 `json:"tips_settled"`
	GrossVolume    uint64 `json:"gross_volume"`
	FeesAccrued    uint64 `json:"fees_accrued"`
	PoolBalance    uint64 `json:"pool_balance"`
	EscrowHeld     uint64 `json:"escrow_held"`
	Paused         bool   `json:"paused"`
	TimelockUsed   bool   `json:"timelock_used"`
}
