package domain

import "time"

// ==== Persistence Constants ====

// StorageKey is the versioned key the snapshot blob lives under
const StorageKey = "secret_social_app_data_v2"

// ==== Account Constants ====

// ServicePrefix marks built-in service accounts; persisted users carrying it
// are dropped on load and replaced by the current built-in roster
const ServicePrefix = "system_"

// AssistantID is the service account answered by the assistant bridge
const AssistantID = ServicePrefix + "gemini"

const (
	// PresenceOnline is the presence label given to new and built-in accounts
	PresenceOnline = "Online"

	// PresenceOffline is shown when an account has no presence label
	PresenceOffline = "Offline"
)

// ==== Chat Constants ====

// BroadcastID is the receiver sentinel for the global room
const BroadcastID = "global"

// ChatPlaceholder is the preview shown for a conversation with no messages
const ChatPlaceholder = "Start a conversation"

// Emojis is the reaction palette offered on every message
var Emojis = []string{"👍", "❤️", "😂", "😮", "😢", "🔥", "🚀", "💯"}

// MaxMessageSize is the maximum accepted message body in bytes
const MaxMessageSize = 4096

// MaxHistorySize is the number of recent events replayed to new websocket clients
const MaxHistorySize = 50

// ==== Assistant Constants ====

const (
	// AssistantModel is the default text-generation model identifier
	AssistantModel = "gemini-3-flash-preview"

	// AssistantDirective is the persona/style directive sent with every transcript
	AssistantDirective = "You are Gemini, a highly intelligent and empathetic AI assistant living inside a secure, dark-themed social application. You are chatting with a user in a private 1-on-1 message. Be helpful, concise, and maintain the persona of a sleek, modern chat partner."

	// AssistantPlaceholder replaces an empty generated reply
	AssistantPlaceholder = "I'm processing that... give me a moment."

	// AssistantFallback is posted when the exchange fails for any reason
	AssistantFallback = "My neural link is currently unstable. Please check your connection or try again later."

	// AssistantTimeout bounds one exchange with the text-generation capability
	AssistantTimeout = 30 * time.Second
)

// ==== Unlock Constants ====

// DefaultUnlockCode is the digit sequence that opens the chat surface
const DefaultUnlockCode = "99999"
