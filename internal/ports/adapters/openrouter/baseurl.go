package openrouter

import (
	"fmt"
	"net/url"
	"strings"
)

const DefaultBaseURL = "https://openrouter.ai"

var defaultAllowedHosts = []string{"openrouter.ai", "api.openrouter.ai"}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// ValidateBaseURL enforces an absolute https URL on an allow-listed host
// without credentials, query or fragment. An empty allow-list means the
// public OpenRouter hosts.
func ValidateBaseURL(baseURL string, allowedHosts []string) error {
	baseURL = normalizeBaseURL(baseURL)
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid OPENROUTER_BASE_URL: %w", err)
	}

	var problem string
	switch {
	case !u.IsAbs() || u.Hostname() == "":
		problem = "absolute URL with host is required"
	case u.User != nil:
		problem = "userinfo is not allowed"
	case u.RawQuery != "" || u.Fragment != "" || u.ForceQuery:
		problem = "query and fragment are not allowed"
	case !strings.EqualFold(u.Scheme, "https"):
		problem = "https is required"
	default:
		host := strings.ToLower(u.Hostname())
		if !hostAllowed(host, allowedHosts) {
			problem = fmt.Sprintf("host %q is not in OPENROUTER_ALLOWED_HOSTS", host)
		}
	}
	if problem != "" {
		return fmt.Errorf("invalid OPENROUTER_BASE_URL %q: %s", baseURL, problem)
	}
	return nil
}

func hostAllowed(host string, allowedHosts []string) bool {
	list := cleanHosts(allowedHosts)
	if len(list) == 0 {
		list = defaultAllowedHosts
	}
	for _, h := range list {
		if h == host {
			return true
		}
	}
	return false
}

// cleanHosts lower-cases entries and strips schemes, slashes and ports.
func cleanHosts(hosts []string) []string {
	var out []string
	for _, h := range hosts {
		v := strings.ToLower(strings.TrimSpace(h))
		v = strings.TrimPrefix(v, "http://")
		v = strings.TrimPrefix(v, "https://")
		v = strings.Trim(v, "/")
		if i := strings.Index(v, ":"); i >= 0 {
			v = v[:i]
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
