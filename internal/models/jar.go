package models

// JarService is the behavioral surface of the tip-jar engine. Identity
// parameters are caller addresses; privileged operations verify them against
// the controlling authority.
type JarService interface {
	// Handle registry
	Register(identity, handle, description string) (*Profile, error)
	Deregister(identity string) error
	AdminDeregister(caller, handle string) error
	AdminDeregisterByIdentity(caller, identity string) error
	IsAvailable(handle string) (bool, error)
	GetJar(handle string) (*Profile, error)

	// Settlement
	SendTip(sender, handle, message string, grossAmount uint64) (*TipRecord, error)

	// Failed-transfer escrow
	WithdrawEscrow(identity string) (uint64, error)
	EscrowBalanceOf(identity string) (uint64, error)

	// Administration
	Pause(caller string) error
	Unpause(caller string) error
	SetFeeRecipient(caller, identity string) error
	TransferAuthority(caller, newAuthority string) error
	AcceptAuthority(caller string) error

	// Emergency withdrawal timelock
	InitiateEmergencyWithdrawal(caller string) (int64, error)
	ExecuteEmergencyWithdrawal(caller string) (uint64, error)
	CancelEmergencyWithdrawal(caller string) error

	// Social links
	AddLink(identity, handle, key, value string) error
	RemoveLink(identity, handle, key string) error
	Links(handle string) ([]*SocialLink, error)

	// Read helpers
	Authority() (string, error)
	TipCount(handle string) (int64, error)
	RecentTips(handle string) ([]*TipRecord, error)
	TipsSlice(handle string, offset, limit int) ([]*TipRecord, error)
	Handles() ([]string, error)
	HandleCount() (int64, error)
	Stats() (*Stats, error)
}
