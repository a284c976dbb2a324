package runner

import (
	"strings"
)

// Address is a copy or session target: a local path or user@host:path.
type Address struct {
	User string
	Host string
	Path string
}

// ParseAddress splits s into user, host and path. Strings without a host part,
// Windows drive paths and paths whose first colon follows a slash are local.
func ParseAddress(s string) Address {
	i := strings.IndexByte(s, ':')
	if i <= 0 || strings.ContainsAny(s[:i], `/\`) || isDriveLetter(s[:i]) {
		return Address{Path: s}
	}
	addr := Address{Host: s[:i], Path: s[i+1:]}
	if at := strings.LastIndexByte(addr.Host, '@'); at >= 0 {
		addr.User = addr.Host[:at]
		addr.Host = addr.Host[at+1:]
	}
	return addr
}

// ParseTarget parses a session target of the form user@host or user@host:path.
func ParseTarget(s string) Address {
	if !strings.Contains(s, ":") {
		s += ":"
	}
	return ParseAddress(s)
}

func isDriveLetter(s string) bool {
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Remote reports whether the address names a host.
func (a Address) Remote() bool {
	return a.Host != ""
}

// Login returns user@host, or host when no user is set.
func (a Address) Login() string {
	if a.User == "" {
		return a.Host
	}
	return a.User + "@" + a.Host
}

func (a Address) String() string {
	if !a.Remote() {
		return a.Path
	}
	return a.Login() + ":" + a.Path
}
