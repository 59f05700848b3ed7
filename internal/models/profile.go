package models

const (
	// MaxDescriptionLength is the maximum jar description length in bytes
	MaxDescriptionLength = 256
	// MaxMessageLength is the maximum tip message length in bytes
	MaxMessageLength = 280
	// MaxLinkValueLength is the maximum social link value length in bytes
	MaxLinkValueLength = 256
	// MaxLinksPerHandle is the maximum number of social links per jar
	MaxLinksPerHandle = 8
)

// Profile represents a registered tip jar in the system.
type Profile struct {
	// Handle is the human-readable jar identifier, stored case-preserving.
	Handle string `json:"handle" gorm:"column:handle;primaryKey"`
	// Normalized is the lowercase form of Handle used for case-insensitive
	// uniqueness. Exactly one active profile may hold a given normalized form.
	Normalized string `json:"-" gorm:"column:normalized;uniqueIndex;not null"`
	// Owner is the identity that registered the jar and receives payouts.
	Owner string `json:"owner" gorm:"column:owner;uniqueIndex;not null"`
	// OriginID is a secret issued at registration that authenticates
	// self-service operations (deregistration, link management) over the API.
	OriginID string `json:"-" gorm:"column:originid;not null"`
	// Description is free-form jar metadata shown to tippers.
	Description string `json:"description" gorm:"column:description"`
	// TotalReceived is the monotonic accumulator of net (post-fee) amounts
	// settled to this jar, in the smallest indivisible unit. It grows even
	// when a delivery later fails into escrow: settlement is final at the
	// ledger level, only the physical transfer is retried.
	TotalReceived uint64 `json:"total_received" gorm:"column:total_received"`
	// CreatedAt is the Unix timestamp of registration.
	CreatedAt int64 `json:"created_at" gorm:"column:created_at"`
}

// TipRecord is an immutable record of a settled tip. Records are keyed by the
// handle string and survive deletion and re-registration of the handle.
type TipRecord struct {
	// ID is the unique identifier of the record.
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// Handle is the jar the tip was settled to, as registered at the time.
	Handle string `json:"handle" gorm:"column:handle;index;not null"`
	// Sender is the identity that sent the tip.
	Sender string `json:"sender" gorm:"column:sender"`
	// GrossAmount is the full amount sent, fee included.
	GrossAmount uint64 `json:"gross_amount" gorm:"column:gross_amount"`
	// FeeAmount is the platform cut, floor(gross * feeRateBp / 10000).
	FeeAmount uint64 `json:"fee_amount" gorm:"column:fee_amount"`
	// NetAmount is the jar owner's payout, gross - fee.
	NetAmount uint64 `json:"net_amount" gorm:"column:net_amount"`
	// Message is the tipper's message.
	Message string `json:"message" gorm:"column:message"`
	// Timestamp is the Unix timestamp of settlement.
	Timestamp int64 `json:"timestamp" gorm:"column:timestamp;index"`
}

// SocialLink is a per-jar key/value entry from a fixed key allowlist.
type SocialLink struct {
	// ID is the unique identifier of the link.
	ID int64 `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	// Handle is the owning jar.
	Handle string `json:"-" gorm:"column:handle;index:idx_handle_key,unique;not null"`
	// Key is the link kind, one of LinkKeyAllowlist.
	Key string `json:"key" gorm:"column:key;index:idx_handle_key,unique;not null"`
	// Value is the link target.
	Value string `json:"value" gorm:"column:value"`
}

// LinkKeyAllowlist is the fixed set of accepted social link keys.
var LinkKeyAllowlist = map[string]bool{
	"website":   true,
	"twitter":   true,
	"github":    true,
	"telegram":  true,
	"discord":   true,
	"instagram": true,
	"youtube":   true,
	"email":     true,
}
