package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mmuslimabdulj/calcvault/internal/domain"
	"github.com/mmuslimabdulj/calcvault/internal/metrics"
	"github.com/mmuslimabdulj/calcvault/internal/storage"
)

// Registration is the candidate account submitted to Register
type Registration struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

// persistTimeout bounds one snapshot write. Writes are detached from the
// caller's cancellation so a dropped request still lands its mutation.
const persistTimeout = 5 * time.Second

// Store owns the application state. Every successful mutation is mirrored to
// the persistence adapter before the call returns; a failing adapter is
// logged and the store keeps running in memory.
//
// When the stored snapshot cannot be read the store is degraded: it serves
// from memory and skips every write so the unread data is never overwritten.
type Store struct {
	mu        sync.RWMutex
	notifyMu  sync.Mutex // keeps observer notifications in mutation order
	state     domain.AppState
	degraded  bool
	adapter   storage.Adapter
	key       string
	logger    *slog.Logger
	now       func() time.Time
	observers []func(domain.AppState)
}

// NewStore creates a store holding the first-run state. A nil adapter keeps
// the store purely in memory.
func NewStore(adapter storage.Adapter, key string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if key == "" {
		key = domain.StorageKey
	}
	return &Store{
		state:   domain.NewAppState(),
		adapter: adapter,
		key:     key,
		logger:  logger,
		now:     time.Now,
	}
}

// Load hydrates the store from the adapter. On failure the store keeps a
// fresh state and the error is returned wrapped in ErrPersistenceUnavailable.
// A read failure leaves the store degraded until a later Load succeeds. A
// corrupt blob is copied to a backup key first; if that copy fails the store
// is degraded too.
func (s *Store) Load(ctx context.Context) error {
	if s.adapter == nil {
		return nil
	}
	state, found, err := storage.LoadSnapshot(ctx, s.adapter, s.key)

	degraded := err != nil
	if errors.Is(err, storage.ErrCorruptSnapshot) {
		backup, berr := storage.PreserveSnapshot(ctx, s.adapter, s.key, s.now().UTC().Format("20060102T150405Z"))
		if berr != nil {
			s.logger.Error("corrupt snapshot could not be preserved", "key", s.key, "error", berr)
		} else {
			s.logger.Warn("corrupt snapshot preserved", "key", s.key, "backup", backup)
			degraded = false
		}
	}

	s.mu.Lock()
	s.state = state
	s.degraded = degraded
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("snapshot load failed, starting fresh",
			"key", s.key,
			"writes_suspended", degraded,
			"error", err,
		)
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}
	s.logger.Info("store loaded",
		"key", s.key,
		"found", found,
		"users", len(state.Users),
		"messages", humanize.Comma(int64(len(state.Messages))),
	)
	return nil
}

// Degraded reports whether snapshot writes are suspended after a failed read
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// Subscribe registers fn to receive a public copy of the state after every
// mutation. fn runs on the mutating goroutine after the store lock is
// released; notifications are delivered in mutation order. fn must not
// mutate the store.
func (s *Store) Subscribe(fn func(domain.AppState)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// mutate runs fn under the write lock and, when fn reports a change,
// persists the whole state and notifies observers.
func (s *Store) mutate(ctx context.Context, fn func(st *domain.AppState) (bool, error)) error {
	s.mu.Lock()
	changed, err := fn(&s.state)
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	s.persist(ctx)
	snapshot := s.state.Public()
	observers := make([]func(domain.AppState), len(s.observers))
	copy(observers, s.observers)
	s.notifyMu.Lock()
	s.mu.Unlock()

	for _, notify := range observers {
		notify(snapshot)
	}
	s.notifyMu.Unlock()
	return nil
}

// persist writes the snapshot; caller holds s.mu
func (s *Store) persist(ctx context.Context) {
	if s.adapter == nil {
		return
	}
	if s.degraded {
		metrics.SnapshotWrites.WithLabelValues("skipped").Inc()
		s.logger.Warn("snapshot write skipped, stored state unread", "key", s.key)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	n, err := storage.SaveSnapshot(ctx, s.adapter, s.key, s.state)
	metrics.SnapshotWrites.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Warn("snapshot write failed, continuing in memory",
			"key", s.key,
			"error", fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err),
		)
		return
	}
	s.logger.Debug("snapshot written", "key", s.key, "size", humanize.Bytes(uint64(n)))
}

// Register creates a new account and makes it the current session
func (s *Store) Register(ctx context.Context, r Registration) (domain.User, error) {
	username := domain.NormalizeUsername(r.Username)
	if username == "" || r.Password == "" {
		metrics.AuthAttempts.WithLabelValues("register", "invalid").Inc()
		return domain.User{}, domain.ErrInvalidRegistration
	}

	var created domain.User
	err := s.mutate(ctx, func(st *domain.AppState) (bool, error) {
		for _, u := range st.Users {
			if u.Username == username {
				return false, domain.ErrUsernameTaken
			}
		}
		created = domain.NewUser(username, r.Password, strings.TrimSpace(r.DisplayName), strings.TrimSpace(r.Avatar))
		st.Users = append(st.Users, created)
		current := created
		st.CurrentUser = &current
		return true, nil
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "rejected").Inc()
		return domain.User{}, err
	}

	metrics.AuthAttempts.WithLabelValues("register", "ok").Inc()
	s.logger.Info("user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

// Authenticate starts a session for the matching username/password pair
func (s *Store) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	username = domain.NormalizeUsername(username)

	var matched domain.User
	err := s.mutate(ctx, func(st *domain.AppState) (bool, error) {
		for _, u := range st.Users {
			if u.HasCredential() && u.Username == username && u.Password == password {
				matched = u
				current := u
				st.CurrentUser = &current
				return true, nil
			}
		}
		return false, domain.ErrInvalidCredentials
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "rejected").Inc()
		return domain.User{}, err
	}

	metrics.AuthAttempts.WithLabelValues("login", "ok").Inc()
	s.logger.Info("user logged in", "user_id", matched.ID)
	return matched, nil
}

// Logout clears the current session; users and messages are kept
func (s *Store) Logout(ctx context.Context) error {
	return s.mutate(ctx, func(st *domain.AppState) (bool, error) {
		st.CurrentUser = nil
		return true, nil
	})
}

// UpdateProfile replaces the display name and avatar of the account with
// u.ID. Blank fields keep their previous value; every other field is ignored.
func (s *Store) UpdateProfile(ctx context.Context, u domain.User) (domain.User, error) {
	var updated domain.User
	err := s.mutate(ctx, func(st *domain.AppState) (bool, error) {
		for i := range st.Users {
			if st.Users[i].ID != u.ID {
				continue
			}
			if name := strings.TrimSpace(u.DisplayName); name != "" {
				st.Users[i].DisplayName = name
			}
			if avatar := strings.TrimSpace(u.Avatar); avatar != "" {
				st.Users[i].Avatar = avatar
			}
			updated = st.Users[i]
			if st.CurrentUser != nil && st.CurrentUser.ID == u.ID {
				current := updated
				st.CurrentUser = &current
			}
			return true, nil
		}
		return false, domain.ErrUserNotFound
	})
	return updated, err
}

// SendMessage appends a message from the current session user
func (s *Store) SendMessage(ctx context.Context, text, receiverID string) (domain.Message, error) {
	var sent domain.Message
	err := s.mutate(ctx, func(st *domain.AppState) (bool, error) {
		if st.CurrentUser == nil {
			return false, domain.ErrNotLoggedIn
		}
		sent = domain.NewMessage(st.CurrentUser.ID, receiverID, text, s.now())
		st.Messages = append(st.Messages, sent)
		return true, nil
	})
	if err != nil {
		return domain.Message{}, err
	}

	metrics.MessagesSent.WithLabelValues(chatKind(receiverID)).Inc()
	return sent, nil
}

// postAs appends a message on behalf of senderID, bypassing the session.
// Only the assistant bridge writes through here.
func (s *Store) postAs(ctx context.Context, msg domain.Message) error {
	err := s.mutate(ctx, func(st *domain.AppState) (bool, error) {
		st.Messages = append(st.Messages, msg)
		return true, nil
	})
	if err == nil {
		metrics.MessagesSent.WithLabelValues(chatKind(msg.ReceiverID)).Inc()
	}
	return err
}

// ToggleReaction flips the current user's emoji on a message. An unknown
// message id is ignored.
func (s *Store) ToggleReaction(ctx context.Context, messageID, emoji string) error {
	return s.mutate(ctx, func(st *domain.AppState) (bool, error) {
		if st.CurrentUser == nil {
			return false, domain.ErrNotLoggedIn
		}
		for i := range st.Messages {
			if st.Messages[i].ID == messageID {
				st.Messages[i].ToggleReaction(emoji, st.CurrentUser.ID)
				return true, nil
			}
		}
		return false, nil
	})
}

// Snapshot returns a deep copy of the full state, credentials included
func (s *Store) Snapshot() domain.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// CurrentUser returns the session user, if any
func (s *Store) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.CurrentUser == nil {
		return domain.User{}, false
	}
	return *s.state.CurrentUser, true
}

// Users returns a copy of the roster
func (s *Store) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, len(s.state.Users))
	copy(out, s.state.Users)
	return out
}

// Messages returns a copy of the message log
func (s *Store) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Message, len(s.state.Messages))
	for i, m := range s.state.Messages {
		out[i] = m.Clone()
	}
	return out
}

// FindUser looks up an account by id
func (s *Store) FindUser(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.FindUser(id)
}

// IsAuthError reports whether err should be shown inline to the caller
func IsAuthError(err error) bool {
	return errors.Is(err, domain.ErrUsernameTaken) ||
		errors.Is(err, domain.ErrInvalidCredentials) ||
		errors.Is(err, domain.ErrInvalidRegistration)
}

func chatKind(receiverID string) string {
	switch {
	case receiverID == domain.BroadcastID:
		return "broadcast"
	case receiverID == domain.AssistantID:
		return "assistant"
	default:
		return "direct"
	}
}
