package domain

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// User is an account in the roster. Service accounts (ServicePrefix ids)
// never carry a credential and never authenticate.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Password    string `json:"password,omitempty"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	LastOnline  string `json:"lastOnline"`
	IsMe        bool   `json:"isMe,omitempty"`
}

// NewUser creates a locally owned account with a generated ID.
// username must already be normalized.
func NewUser(username, password, displayName, avatar string) User {
	if strings.TrimSpace(displayName) == "" {
		displayName = username
	}
	if strings.TrimSpace(avatar) == "" {
		avatar = DefaultAvatar(username)
	}
	return User{
		ID:          uuid.NewString(),
		Username:    username,
		Password:    password,
		DisplayName: displayName,
		Avatar:      avatar,
		LastOnline:  PresenceOnline,
		IsMe:        true,
	}
}

// IsService reports whether u is a built-in service account
func (u User) IsService() bool {
	return strings.HasPrefix(u.ID, ServicePrefix)
}

// HasCredential reports whether u can authenticate at all
func (u User) HasCredential() bool {
	return !u.IsService() && u.Password != ""
}

// Presence returns the presence label, defaulting to offline
func (u User) Presence() string {
	if u.LastOnline == "" {
		return PresenceOffline
	}
	return u.LastOnline
}

// Public returns a copy without the credential, safe to hand to presentation
func (u User) Public() User {
	u.Password = ""
	return u
}

// NormalizeUsername lowercases and trims a username before any comparison
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// DefaultAvatar derives a stable placeholder avatar from a username
func DefaultAvatar(username string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(username) + "/200"
}
