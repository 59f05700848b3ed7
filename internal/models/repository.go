package models

// Repository persists all engine state. Implementations must make each method
// atomic: either every side effect of a call is applied or none is. Handle
// lookups are case-insensitive; stored handles keep their registered casing.
type Repository interface {
	// CreateProfile inserts the profile together with its normalized
	// reservation and enumeration index entry. Returns ErrHandleTaken on a
	// case-insensitive collision with an active profile.
	CreateProfile(profile *Profile) error
	// DeleteProfile removes the profile, its reservation, its index entry and
	// its social links. Tip history for the handle is retained.
	DeleteProfile(handle string) error
	// GetProfile resolves a handle (any casing) to its active profile.
	// Returns ErrNotFound when no active registration matches.
	GetProfile(handle string) (*Profile, error)
	// GetHandleByOwner returns the handle registered to the identity,
	// or ErrNotFound.
	GetHandleByOwner(owner string) (string, error)
	// HandleReserved reports whether a normalized handle is claimed.
	HandleReserved(normalized string) (bool, error)
	Handles() ([]string, error)
	HandleCount() (int64, error)

	// SettleTip appends the record and grows the profile's TotalReceived by
	// payout in one atomic step. Returns ErrAmountOverflow (nothing applied)
	// if the accumulator would wrap.
	SettleTip(handle string, payout uint64, record *TipRecord) error
	Tips(handle string) ([]*TipRecord, error)
	// TipsSlice returns records ordered newest first.
	TipsSlice(handle string, offset, limit int) ([]*TipRecord, error)
	TipCount(handle string) (int64, error)

	// CreditEscrow grows the identity's escrow balance, creating the row
	// lazily. Returns ErrAmountOverflow if the balance would wrap.
	CreditEscrow(identity string, amount uint64) error
	// DebitEscrow zeroes the identity's escrow balance and returns the amount
	// that was held.
	DebitEscrow(identity string) (uint64, error)
	EscrowBalance(identity string) (uint64, error)

	JarState() (*JarState, error)
	SaveJarState(state *JarState) error

	AddLink(link *SocialLink) error
	RemoveLink(handle, key string) error
	Links(handle string) ([]*SocialLink, error)
	LinkCount(handle string) (int64, error)
}
