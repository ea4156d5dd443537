package platform

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnknownPlatform indicates that a platform identifier is not in the table.
var ErrUnknownPlatform = errors.New("unknown platform")

// Registry holds the platform table and classifies URLs against it.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	profiles []*Profile
	byID     map[ID]*Profile
	generic  *Profile
}

// NewRegistry builds the platform table.
// extraDomains appends domain fragments to existing platforms, keyed by platform ID.
func NewRegistry(extraDomains map[string][]string) (*Registry, error) {
	defaults := defaultProfiles()

	r := &Registry{
		profiles: make([]*Profile, 0, len(defaults)),
		byID:     make(map[ID]*Profile, len(defaults)),
		generic:  genericProfile(),
	}

	for _, p := range defaults {
		r.profiles = append(r.profiles, p)
		r.byID[p.ID] = p
	}

	for id, domains := range extraDomains {
		p, ok := r.byID[ID(strings.ToLower(strings.TrimSpace(id)))]
		if !ok {
			return nil, fmt.Errorf("%w in extra_domains: '%s'", ErrUnknownPlatform, id)
		}

		for _, domain := range domains {
			domain = strings.ToLower(strings.TrimSpace(domain))
			if domain != "" {
				p.Domains = append(p.Domains, domain)
			}
		}
	}

	return r, nil
}

// Classify maps a URL to a platform identifier.
// A platform matches when its domain fragment is a substring of the URL's host,
// or of the whole URL when it has no host. It never fails: a URL that matches nothing yields Unknown.
func (r *Registry) Classify(rawURL string) ID {
	target := extractHost(rawURL)

	for _, p := range r.profiles {
		for _, fragment := range p.Domains {
			if strings.Contains(target, fragment) {
				return p.ID
			}
		}
	}

	return Unknown
}

// Profile returns the profile of a platform.
// Unknown and unrecognized identifiers get the generic best-effort profile.
func (r *Registry) Profile(id ID) *Profile {
	if p, ok := r.byID[id]; ok {
		return p.clone()
	}

	return r.generic.clone()
}

// Lookup returns the profile of a known platform.
func (r *Registry) Lookup(id string) (*Profile, error) {
	p, ok := r.byID[ID(strings.ToLower(strings.TrimSpace(id)))]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownPlatform, id)
	}

	return p.clone(), nil
}

// Profiles returns every profile in table order.
func (r *Registry) Profiles() []*Profile {
	result := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		result = append(result, p.clone())
	}

	return result
}

// Categories returns listing categories in display order.
func (r *Registry) Categories() []string {
	return append([]string(nil), categoryOrder...)
}

// extractHost returns the lower-cased host of rawURL.
// When no host can be parsed, the whole lower-cased input is returned.
func extractHost(rawURL string) string {
	lowered := strings.ToLower(strings.TrimSpace(rawURL))

	candidate := lowered
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return lowered
	}

	return u.Hostname()
}
