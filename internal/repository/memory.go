package repository

import (
	"math"
	"sync"

	"github.com/core-coin/stips/internal/models"
	"github.com/core-coin/stips/pkg/validation"
)

// MemoryRepository is an in-memory implementation of models.Repository. It is
// the reference store for the engine's semantics: O(1) existence checks via
// the normalized reservation map, and swap-remove deletion from the
// enumeration index (order is not preserved, which is deliberate).
//
// Tip history is keyed by the normalized handle string, independent of the
// profile lifecycle: it survives deletion and continues under the same key
// after re-registration.
type MemoryRepository struct {
	mu sync.RWMutex

	profiles map[string]*models.Profile      // stored handle -> profile
	reserved map[string]string               // normalized handle -> stored handle
	owners   map[string]string               // owner identity -> stored handle
	index    []string                        // enumeration index of stored handles
	indexPos map[string]int                  // stored handle -> index position
	tips     map[string][]*models.TipRecord  // normalized handle -> history, append-only
	escrow   map[string]uint64               // identity -> balance, zeroed not removed
	links    map[string][]*models.SocialLink // normalized handle -> links

	state     *models.JarState
	nextTipID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		profiles: make(map[string]*models.Profile),
		reserved: make(map[string]string),
		owners:   make(map[string]string),
		indexPos: make(map[string]int),
		tips:     make(map[string][]*models.TipRecord),
		escrow:   make(map[string]uint64),
		links:    make(map[string][]*models.SocialLink),
	}
}

func (r *MemoryRepository) CreateProfile(profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.reserved[profile.Normalized]; taken {
		return models.ErrHandleTaken
	}

	p := *profile
	r.profiles[p.Handle] = &p
	r.reserved[p.Normalized] = p.Handle
	r.owners[p.Owner] = p.Handle
	r.indexPos[p.Handle] = len(r.index)
	r.index = append(r.index, p.Handle)
	return nil
}

func (r *MemoryRepository) DeleteProfile(handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.reserved[validation.NormalizeHandle(handle)]
	if !ok {
		return models.ErrNotFound
	}
	p := r.profiles[stored]

	delete(r.profiles, stored)
	delete(r.reserved, p.Normalized)
	delete(r.owners, p.Owner)
	delete(r.links, p.Normalized)

	// Swap-remove from the enumeration index: O(1), order not preserved.
	pos := r.indexPos[stored]
	last := len(r.index) - 1
	if pos != last {
		moved := r.index[last]
		r.index[pos] = moved
		r.indexPos[moved] = pos
	}
	r.index = r.index[:last]
	delete(r.indexPos, stored)
	return nil
}

func (r *MemoryRepository) GetProfile(handle string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getProfileLocked(handle)
}

func (r *MemoryRepository) getProfileLocked(handle string) (*models.Profile, error) {
	stored, ok := r.reserved[validation.NormalizeHandle(handle)]
	if !ok {
		return nil, models.ErrNotFound
	}
	p := *r.profiles[stored]
	return &p, nil
}

func (r *MemoryRepository) GetHandleByOwner(owner string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.owners[owner]
	if !ok {
		return "", models.ErrNotFound
	}
	return handle, nil
}

func (r *MemoryRepository) HandleReserved(normalized string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.reserved[normalized]
	return ok, nil
}

func (r *MemoryRepository) Handles() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.index))
	copy(out, r.index)
	return out, nil
}

func (r *MemoryRepository) HandleCount() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.index)), nil
}

func (r *MemoryRepository) SettleTip(handle string, payout uint64, record *models.TipRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.reserved[validation.NormalizeHandle(handle)]
	if !ok {
		return models.ErrNotFound
	}
	p := r.profiles[stored]
	if p.TotalReceived > math.MaxUint64-payout {
		return models.ErrAmountOverflow
	}

	p.TotalReceived += payout
	r.nextTipID++
	rec := *record
	rec.ID = r.nextTipID
	norm := p.Normalized
	r.tips[norm] = append(r.tips[norm], &rec)
	record.ID = rec.ID
	return nil
}

func (r *MemoryRepository) Tips(handle string) ([]*models.TipRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := r.tips[validation.NormalizeHandle(handle)]
	out := make([]*models.TipRecord, len(history))
	for i, rec := range history {
		c := *rec
		out[i] = &c
	}
	return out, nil
}

func (r *MemoryRepository) TipsSlice(handle string, offset, limit int) ([]*models.TipRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.tips[validation.NormalizeHandle(handle)]
	n := len(history)
	if offset < 0 || limit <= 0 || offset >= n {
		return []*models.TipRecord{}, nil
	}
	out := make([]*models.TipRecord, 0, limit)
	// Newest first.
	for i := n - 1 - offset; i >= 0 && len(out) < limit; i-- {
		c := *history[i]
		out = append(out, &c)
	}
	return out, nil
}

func (r *MemoryRepository) TipCount(handle string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.tips[validation.NormalizeHandle(handle)])), nil
}

func (r *MemoryRepository) CreditEscrow(identity string, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.escrow[identity] > math.MaxUint64-amount {
		return models.ErrAmountOverflow
	}
	r.escrow[identity] += amount
	return nil
}

func (r *MemoryRepository) DebitEscrow(identity string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	amount := r.escrow[identity]
	r.escrow[identity] = 0
	return amount, nil
}

func (r *MemoryRepository) EscrowBalance(identity string) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.escrow[identity], nil
}

func (r *MemoryRepository) JarState() (*models.JarState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return nil, models.ErrNotFound
	}
	s := *r.state
	return &s, nil
}

func (r *MemoryRepository) SaveJarState(state *models.JarState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := *state
	r.state = &s
	return nil
}

func (r *MemoryRepository) AddLink(link *models.SocialLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	norm := validation.NormalizeHandle(link.Handle)
	for _, l := range r.links[norm] {
		if l.Key == link.Key {
			l.Value = link.Value
			return nil
		}
	}
	c := *link
	r.links[norm] = append(r.links[norm], &c)
	return nil
}

func (r *MemoryRepository) RemoveLink(handle, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	norm := validation.NormalizeHandle(handle)
	for i, l := range r.links[norm] {
		if l.Key == key {
			r.links[norm] = append(r.links[norm][:i], r.links[norm][i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *MemoryRepository) Links(handle string) ([]*models.SocialLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	links := r.links[validation.NormalizeHandle(handle)]
	out := make([]*models.SocialLink, len(links))
	for i, l := range links {
		c := *l
		out[i] = &c
	}
	return out, nil
}

func (r *MemoryRepository) LinkCount(handle string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.links[validation.NormalizeHandle(handle)])), nil
}
