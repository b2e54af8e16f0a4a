package outlets

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sinodesk/sinodesk/app/database"
)

// Matcher maps article URLs to tracked source outlets by domain pattern
type Matcher struct {
	repo database.OutletRepository
}

// NewMatcher creates a new outlet matcher
func NewMatcher(repo database.OutletRepository) *Matcher {
	return &Matcher{repo: repo}
}

// Match returns the best-matching tracked outlet for the URL, or nil if no
// outlet matches. Matching never fails the caller on a bad URL.
func (m *Matcher) Match(rawURL string) (*database.Outlet, error) {
	host := hostOf(rawURL)
	if host == "" {
		return nil, nil
	}

	outlets, err := m.repo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load outlets: %w", err)
	}

	return MatchDomain(host, outlets), nil
}

// MatchDomain picks the outlet whose domain pattern best matches the host.
// Exact match beats subdomain match; among equals the longest (most specific)
// pattern wins; remaining ties go to the earliest-created outlet, so the
// result is deterministic. Outlets must be in creation order.
func MatchDomain(host string, outlets []database.Outlet) *database.Outlet {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	if host == "" {
		return nil
	}

	var best *database.Outlet
	bestExact := false
	bestLen := -1

	for i := range outlets {
		pattern := strings.ToLower(strings.TrimSpace(outlets[i].DomainPattern))
		if pattern == "" {
			continue
		}

		exact := host == pattern
		suffix := strings.HasSuffix(host, "."+pattern)
		if !exact && !suffix {
			continue
		}

		// Strict improvement only: creation order breaks ties.
		if exact != bestExact {
			if !exact {
				continue
			}
		} else if len(pattern) <= bestLen {
			continue
		}

		best = &outlets[i]
		bestExact = exact
		bestLen = len(pattern)
	}

	return best
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
