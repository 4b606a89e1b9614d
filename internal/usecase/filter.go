package usecase

import "github.com/mmuslimabdulj/calcvault/internal/domain"

// Conversation returns the messages of one chat surface in log order.
// target is either domain.BroadcastID or the counterpart's user id.
func Conversation(messages []domain.Message, viewerID, target string) []domain.Message {
	out := make([]domain.Message, 0)
	for _, m := range messages {
		if inConversation(m, viewerID, target) {
			out = append(out, m)
		}
	}
	return out
}

func inConversation(m domain.Message, viewerID, target string) bool {
	if target == domain.BroadcastID {
		return m.ReceiverID == domain.BroadcastID
	}
	return (m.SenderID == viewerID && m.ReceiverID == target) ||
		(m.SenderID == target && m.ReceiverID == viewerID)
}

// ChatSummary is one entry of the chat list
type ChatSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar,omitempty"`
	Presence    string `json:"presence,omitempty"`
	LastMessage string `json:"lastMessage"`
	Timestamp   int64  `json:"timestamp,omitempty"`
}

// ChatSummaries lists the global room first, then every other account, each
// with the preview of its latest message.
func ChatSummaries(state domain.AppState, viewerID string) []ChatSummary {
	out := []ChatSummary{summarize(state.Messages, viewerID, domain.BroadcastID, ChatSummary{
		ID:   domain.BroadcastID,
		Name: "Global Chat",
	})}
	for _, u := range state.Users {
		if u.ID == viewerID {
			continue
		}
		out = append(out, summarize(state.Messages, viewerID, u.ID, ChatSummary{
			ID:       u.ID,
			Name:     u.DisplayName,
			Avatar:   u.Avatar,
			Presence: u.Presence(),
		}))
	}
	return out
}

func summarize(messages []domain.Message, viewerID, target string, c ChatSummary) ChatSummary {
	c.LastMessage = domain.ChatPlaceholder
	for i := len(messages) - 1; i >= 0; i-- {
		if inConversation(messages[i], viewerID, target) {
			c.LastMessage = messages[i].Text
			c.Timestamp = messages[i].Timestamp
			break
		}
	}
	return c
}
