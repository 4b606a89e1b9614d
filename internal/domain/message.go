package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reaction is one emoji placed on a message by one user
type Reaction struct {
	Emoji  string `json:"emoji"`
	UserID string `json:"userId"`
}

// Message is an entry in the global log. ReceiverID is either BroadcastID or
// a user id. Only Reactions changes after creation.
type Message struct {
	ID         string     `json:"id"`
	SenderID   string     `json:"senderId"`
	ReceiverID string     `json:"receiverId"`
	Text       string     `json:"text"`
	Timestamp  int64      `json:"timestamp"` // unix milliseconds
	Reactions  []Reaction `json:"reactions"`
}

// NewMessage creates a message with a generated ID stamped at now
func NewMessage(senderID, receiverID, text string, now time.Time) Message {
	return Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Timestamp:  now.UnixMilli(),
		Reactions:  []Reaction{},
	}
}

// IsBroadcast reports whether the message belongs to the global room
func (m Message) IsBroadcast() bool {
	return m.ReceiverID == BroadcastID
}

// CreatedAt returns the creation time
func (m Message) CreatedAt() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// ToggleReaction removes the (emoji, user) reaction when present and appends
// it otherwise. It returns true when the reaction was added.
func (m *Message) ToggleReaction(emoji, userID string) bool {
	for i, r := range m.Reactions {
		if r.Emoji == emoji && r.UserID == userID {
			m.Reactions = append(m.Reactions[:i:i], m.Reactions[i+1:]...)
			return false
		}
	}
	m.Reactions = append(m.Reactions, Reaction{Emoji: emoji, UserID: userID})
	return true
}

// ReactionGroup is the aggregated view of one emoji on a message
type ReactionGroup struct {
	Emoji string   `json:"emoji"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// ReactionGroups aggregates reactions per emoji in first-seen order
func (m Message) ReactionGroups() []ReactionGroup {
	groups := make([]ReactionGroup, 0)
	index := make(map[string]int)
	for _, r := range m.Reactions {
		i, ok := index[r.Emoji]
		if !ok {
			i = len(groups)
			index[r.Emoji] = i
			groups = append(groups, ReactionGroup{Emoji: r.Emoji})
		}
		groups[i].Count++
		groups[i].Users = append(groups[i].Users, r.UserID)
	}
	return groups
}

// Clone returns a copy that shares no reaction storage with m
func (m Message) Clone() Message {
	reactions := make([]Reaction, len(m.Reactions))
	copy(reactions, m.Reactions)
	m.Reactions = reactions
	return m
}
