package domain

import (
	"testing"
	"time"
)

func TestNewAppState(t *testing.T) {
	s := NewAppState()

	if s.CurrentUser != nil {
		t.Error("Expected no current user")
	}
	if len(s.Messages) != 0 {
		t.Errorf("Expected empty log, got %d", len(s.Messages))
	}
	if len(s.Users) != len(BuiltinUsers()) {
		t.Errorf("Expected %d built-in users, got %d", len(BuiltinUsers()), len(s.Users))
	}
	if _, ok := s.FindUser(AssistantID); !ok {
		t.Error("Expected assistant account in roster")
	}
}

func TestMergeBuiltins(t *testing.T) {
	kay := NewUser("kay", "p", "Kay", "")
	stale := User{ID: AssistantID, Username: "gemini", DisplayName: "Old Name"}
	retired := User{ID: ServicePrefix + "retired", Username: "retired"}

	s := MergeBuiltins(AppState{Users: []User{kay, stale, retired}})

	builtins := BuiltinUsers()
	if len(s.Users) != len(builtins)+1 {
		t.Fatalf("Expected %d users, got %d", len(builtins)+1, len(s.Users))
	}
	for i, b := range builtins {
		if s.Users[i] != b {
			t.Errorf("Expected built-in %s at %d, got %+v", b.ID, i, s.Users[i])
		}
	}
	if s.Users[len(builtins)] != kay {
		t.Errorf("Expected user-created account preserved, got %+v", s.Users[len(builtins)])
	}
	if s.Messages == nil {
		t.Error("Expected non-nil message log")
	}
}

func TestMergeBuiltins_Idempotent(t *testing.T) {
	s := NewAppState()
	s.Users = append(s.Users, NewUser("kay", "p", "", ""))

	once := MergeBuiltins(s)
	twice := MergeBuiltins(once)

	if len(once.Users) != len(twice.Users) {
		t.Errorf("Expected stable roster size, got %d then %d", len(once.Users), len(twice.Users))
	}
}

func TestAppState_Public(t *testing.T) {
	kay := NewUser("kay", "secret", "Kay", "")
	s := NewAppState()
	s.Users = append(s.Users, kay)
	s.CurrentUser = &kay
	s.Messages = append(s.Messages, NewMessage(kay.ID, BroadcastID, "hi", time.Now()))

	p := s.Public()
	for _, u := range p.Users {
		if u.Password != "" {
			t.Errorf("Expected stripped password for %s", u.Username)
		}
	}
	if p.CurrentUser.Password != "" {
		t.Error("Expected stripped current user password")
	}
	if s.CurrentUser.Password != "secret" {
		t.Error("Expected original state untouched")
	}

	p.Messages[0].ToggleReaction("🔥", kay.ID)
	if len(s.Messages[0].Reactions) != 0 {
		t.Error("Expected deep copy of messages")
	}
}
