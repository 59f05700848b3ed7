package jar

import (
	"fmt"

	"github.com/core-coin/stips/internal/models"
	"github.com/core-coin/stips/pkg/validation"
)

// AddLink sets a social link on the caller's jar. Keys come from a fixed
// allowlist; setting an existing key overwrites its value.
func (j *Jar) AddLink(identity, handle, key, value string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	profile, err := j.ownedProfile(identity, handle)
	if err != nil {
		return err
	}
	if !models.LinkKeyAllowlist[key] {
		return fmt.Errorf("%w: %q", models.ErrInvalidLinkKey, key)
	}
	if len(value) > models.MaxLinkValueLength {
		return models.ErrLinkValueTooLong
	}

	links, err := j.repo.Links(profile.Handle)
	if err != nil {
		return err
	}
	replacing := false
	for _, l := range links {
		if l.Key == key {
			replacing = true
			break
		}
	}
	if !replacing && len(links) >= models.MaxLinksPerHandle {
		return models.ErrTooManyLinks
	}

	return j.repo.AddLink(&models.SocialLink{Handle: profile.Handle, Key: key, Value: value})
}

// RemoveLink deletes a social link from the caller's jar.
func (j *Jar) RemoveLink(identity, handle, key string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	profile, err := j.ownedProfile(identity, handle)
	if err != nil {
		return err
	}
	return j.repo.RemoveLink(profile.Handle, key)
}

// Links lists a jar's social links.
func (j *Jar) Links(handle string) ([]*models.SocialLink, error) {
	profile, err := j.GetJar(handle)
	if err != nil {
		return nil, err
	}
	return j.repo.Links(profile.Handle)
}

func (j *Jar) ownedProfile(identity, handle string) (*models.Profile, error) {
	profile, err := j.GetJar(handle)
	if err != nil {
		return nil, err
	}
	if validation.NormalizeIdentity(identity) != profile.Owner {
		return nil, models.ErrUnauthorized
	}
	return profile, nil
}
