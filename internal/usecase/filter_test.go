package usecase

import (
	"testing"
	"time"

	"github.com/mmuslimabdulj/calcvault/internal/domain"
)

func msg(from, to, text string) domain.Message {
	return domain.NewMessage(from, to, text, time.Now())
}

func TestConversation_DirectSymmetry(t *testing.T) {
	log := []domain.Message{msg("a", "b", "hi")}

	ab := Conversation(log, "a", "b")
	ba := Conversation(log, "b", "a")

	if len(ab) != 1 || ab[0].Text != "hi" {
		t.Fatalf("Expected one 'hi' for a->b, got %+v", ab)
	}
	if len(ba) != 1 || ba[0].ID != ab[0].ID {
		t.Errorf("Expected identical single entry for b->a, got %+v", ba)
	}
}

func TestConversation_Broadcast(t *testing.T) {
	log := []domain.Message{
		msg("a", domain.BroadcastID, "one"),
		msg("a", "b", "private"),
		msg("c", domain.BroadcastID, "two"),
	}

	got := Conversation(log, "b", domain.BroadcastID)
	if len(got) != 2 || got[0].Text != "one" || got[1].Text != "two" {
		t.Errorf("Expected [one two] in order, got %+v", got)
	}
}

func TestConversation_DisjointTargets(t *testing.T) {
	log := []domain.Message{
		msg("me", "a", "1"),
		msg("a", "me", "2"),
		msg("me", "b", "3"),
		msg("b", "me", "4"),
		msg("a", "b", "5"),
		msg("me", domain.BroadcastID, "6"),
		msg("b", "a", "7"),
	}

	withA := Conversation(log, "me", "a")
	withB := Conversation(log, "me", "b")

	seen := make(map[string]bool)
	for _, m := range withA {
		seen[m.ID] = true
	}
	for _, m := range withB {
		if seen[m.ID] {
			t.Errorf("Message %q appears in both threads", m.Text)
		}
	}
	if len(withA) != 2 || len(withB) != 2 {
		t.Errorf("Expected 2 messages per thread, got %d and %d", len(withA), len(withB))
	}
}

func TestConversation_NoSideEffects(t *testing.T) {
	log := []domain.Message{msg("a", "b", "hi"), msg("b", "a", "yo")}
	first := Conversation(log, "a", "b")
	second := Conversation(log, "a", "b")

	if len(first) != len(second) || len(log) != 2 {
		t.Error("Expected repeatable results and untouched input")
	}
	if got := Conversation(nil, "a", "b"); got == nil || len(got) != 0 {
		t.Error("Expected empty non-nil result for empty log")
	}
}

func TestChatSummaries(t *testing.T) {
	me := domain.NewUser("me", "p", "Me", "")
	lee := domain.NewUser("lee", "p", "Lee", "")
	state := domain.NewAppState()
	state.Users = append(state.Users, me, lee)
	state.Messages = []domain.Message{
		msg(me.ID, lee.ID, "first"),
		msg(lee.ID, me.ID, "latest"),
	}

	chats := ChatSummaries(state, me.ID)
	if len(chats) != len(state.Users) {
		t.Fatalf("Expected %d chats (global + others), got %d", len(state.Users), len(chats))
	}
	if chats[0].ID != domain.BroadcastID || chats[0].LastMessage != domain.ChatPlaceholder {
		t.Errorf("Expected empty global chat first, got %+v", chats[0])
	}
	for _, c := range chats {
		if c.ID == me.ID {
			t.Error("Expected viewer excluded from chat list")
		}
		if c.ID == lee.ID && c.LastMessage != "latest" {
			t.Errorf("Expected latest preview, got %q", c.LastMessage)
		}
		if c.ID == domain.AssistantID && c.LastMessage != domain.ChatPlaceholder {
			t.Errorf("Expected placeholder for assistant, got %q", c.LastMessage)
		}
	}
}
