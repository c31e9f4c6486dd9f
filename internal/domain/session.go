// Package domain contains entities without logic, just meta-data.
package domain

type (
	ChannelName string
	SessionID   string
	ViewerID    string
)

// SessionRole is the role of a live socket session. Hosts are not counted
// as viewers.
type SessionRole string

const (
	RoleHost   SessionRole = "host"
	RoleViewer SessionRole = "viewer"
)

// ParseSessionRole defaults to viewer; only an explicit "host" hosts.
func ParseSessionRole(s string) SessionRole {
	if s == string(RoleHost) {
		return RoleHost
	}
	return RoleViewer
}

const (
	MaxDisplayNameLen  = 36
	DefaultDisplayName = "Anonymous"
)

// SanitizeDisplayName fills in the default name and caps the length.
func SanitizeDisplayName(s string) string {
	if s == "" {
		return DefaultDisplayName
	}
	if len(s) > MaxDisplayNameLen {
		return s[:MaxDisplayNameLen]
	}
	return s
}
