package domain

import "strings"

// AppState is the aggregate root mirrored into the snapshot blob
type AppState struct {
	CurrentUser *User     `json:"currentUser"`
	Users       []User    `json:"users"`
	Messages    []Message `json:"messages"`
}

// BuiltinUsers returns the service accounts seeded on every load
func BuiltinUsers() []User {
	return []User{
		{
			ID:          AssistantID,
			Username:    "gemini",
			DisplayName: "Gemini",
			Avatar:      "https://img.freepik.com/free-vector/starry-night-sky-background_52683-100236.jpg",
			LastOnline:  PresenceOnline,
		},
	}
}

// NewAppState returns the first-run state: built-ins only, nobody logged in
func NewAppState() AppState {
	return AppState{
		Users:    BuiltinUsers(),
		Messages: []Message{},
	}
}

// MergeBuiltins puts the current built-in roster ahead of every user-created
// account in s. Persisted service accounts are replaced, everything else is
// kept verbatim.
func MergeBuiltins(s AppState) AppState {
	users := BuiltinUsers()
	for _, u := range s.Users {
		if strings.HasPrefix(u.ID, ServicePrefix) {
			continue
		}
		users = append(users, u)
	}
	s.Users = users
	if s.Messages == nil {
		s.Messages = []Message{}
	}
	return s
}

// Clone returns a deep copy of s
func (s AppState) Clone() AppState {
	out := AppState{
		Users:    make([]User, len(s.Users)),
		Messages: make([]Message, len(s.Messages)),
	}
	copy(out.Users, s.Users)
	for i, m := range s.Messages {
		out.Messages[i] = m.Clone()
	}
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		out.CurrentUser = &u
	}
	return out
}

// Public returns a deep copy with every credential stripped
func (s AppState) Public() AppState {
	out := s.Clone()
	for i := range out.Users {
		out.Users[i] = out.Users[i].Public()
	}
	if out.CurrentUser != nil {
		u := out.CurrentUser.Public()
		out.CurrentUser = &u
	}
	return out
}

// FindUser looks a user up by id
func (s AppState) FindUser(id string) (User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}
