package jar

import (
	"errors"
	"fmt"

	"github.com/core-coin/stips/internal/models"
	"github.com/core-coin/stips/pkg/validation"
	"github.com/google/uuid"
)

// Register claims a handle for the identity and creates its jar profile.
// Uniqueness is case-insensitive; a handle freed by deletion is immediately
// registrable again, first writer wins.
func (j *Jar) Register(identity, handle, description string) (*models.Profile, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.state()
	if err != nil {
		return nil, err
	}
	if state.Paused {
		return nil, models.ErrPaused
	}

	owner, err := validation.ValidateAndNormalizeIdentity(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidIdentity, err)
	}
	normalized, err := validation.ValidateAndNormalizeHandle(handle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidHandle, err)
	}
	if j.reserved != nil && j.reserved.IsReserved(normalized) {
		return nil, fmt.Errorf("%w: handle is reserved", models.ErrInvalidHandle)
	}
	if len(description) > models.MaxDescriptionLength {
		return nil, models.ErrDescriptionTooLong
	}

	if _, err := j.repo.GetHandleByOwner(owner); err == nil {
		return nil, models.ErrAlreadyRegistered
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	profile := &models.Profile{
		Handle:      handle,
		Normalized:  normalized,
		Owner:       owner,
		OriginID:    uuid.NewString(),
		Description: description,
		CreatedAt:   j.now(),
	}
	if err := j.repo.CreateProfile(profile); err != nil {
		return nil, err
	}

	j.logger.Info("Jar registered ", "handle ", handle, "owner ", owner)
	j.emit(&models.Event{Type: models.EventJarRegistered, Handle: handle, Identity: owner})
	return profile, nil
}

// Deregister is the owner's self-service deletion. Tip history for the
// handle is retained.
func (j *Jar) Deregister(identity string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	owner := validation.NormalizeIdentity(identity)
	handle, err := j.repo.GetHandleByOwner(owner)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotRegistered
		}
		return err
	}
	return j.deleteJar(handle, owner)
}

// AdminDeregister deletes a jar by handle, callable by the authority only.
func (j *Jar) AdminDeregister(caller, handle string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.state()
	if err != nil {
		return err
	}
	if err := j.requireAuthority(state, caller); err != nil {
		return err
	}
	profile, err := j.repo.GetProfile(handle)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrHandleNotFound
		}
		return err
	}
	return j.deleteJar(profile.Handle, profile.Owner)
}

// AdminDeregisterByIdentity deletes a jar by its owner, authority only.
func (j *Jar) AdminDeregisterByIdentity(caller, identity string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.state()
	if err != nil {
		return err
	}
	if err := j.requireAuthority(state, caller); err != nil {
		return err
	}
	owner := validation.NormalizeIdentity(identity)
	handle, err := j.repo.GetHandleByOwner(owner)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotRegistered
		}
		return err
	}
	return j.deleteJar(handle, owner)
}

func (j *Jar) deleteJar(handle, owner string) error {
	if err := j.repo.DeleteProfile(handle); err != nil {
		return err
	}
	j.logger.Info("Jar deleted ", "handle ", handle, "owner ", owner)
	j.emit(&models.Event{Type: models.EventJarDeleted, Handle: handle, Identity: owner})
	return nil
}

// IsAvailable reports whether the handle can be registered right now.
// Any case variant of a claimed handle is unavailable.
func (j *Jar) IsAvailable(handle string) (bool, error) {
	normalized, err := validation.ValidateAndNormalizeHandle(handle)
	if err != nil {
		return false, fmt.Errorf("%w: %v", models.ErrInvalidHandle, err)
	}
	if j.reserved != nil && j.reserved.IsReserved(normalized) {
		return false, nil
	}
	taken, err := j.repo.HandleReserved(normalized)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// GetJar resolves a handle (any casing) to its profile.
func (j *Jar) GetJar(handle string) (*models.Profile, error) {
	profile, err := j.repo.GetProfile(handle)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrHandleNotFound
		}
		return nil, err
	}
	return profile, nil
}
