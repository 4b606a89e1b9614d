package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mmuslimabdulj/calcvault/internal/config"
	"github.com/mmuslimabdulj/calcvault/internal/delivery/ws"
	"github.com/mmuslimabdulj/calcvault/internal/domain"
	"github.com/mmuslimabdulj/calcvault/internal/usecase"
	"github.com/mmuslimabdulj/calcvault/view/pages"
)

const shellVersion = "v4.2.0"

// Handler adapts the store, bridge and calculator to HTTP
type Handler struct {
	store    *usecase.Store
	bridge   *usecase.Bridge
	calc     *usecase.Calculator
	hub      *ws.Hub
	cfg      *config.Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler wires the presentation adapter
func NewHandler(store *usecase.Store, bridge *usecase.Bridge, calc *usecase.Calculator, hub *ws.Hub, cfg *config.Config, logger *slog.Logger) *Handler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		store:  store,
		bridge: bridge,
		calc:   calc,
		hub:    hub,
		cfg:    cfg,
		logger: logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return h.isOriginAllowed(r.Header.Get("Origin"))
		},
	}
	return h
}

// isOriginAllowed checks origin against the configured list; an empty
// origin is a same-origin request
func (h *Handler) isOriginAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || origin == allowed {
			return true
		}
	}
	return false
}

func (h *Handler) bodyLimit() int64 {
	return int64(h.cfg.MaxMessageSize) + 1024
}

// HandlePage serves the calculator shell
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	st := h.calc.State()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pages.Shell(pages.ShellProps{
		Title:    "Calculator",
		Version:  shellVersion,
		Display:  st.Display,
		History:  st.History,
		Unlocked: st.Unlocked,
		Emojis:   domain.Emojis,
	}).Render(r.Context(), w)
	if err != nil {
		h.logger.Error("render shell", "error", err)
	}
}

// HandlePress feeds one keypad press to the calculator
func (h *Handler) HandlePress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := decode(w, r, 1024, &req); err != nil || !usecase.IsCalculatorKey(req.Key) {
		Error(w, http.StatusBadRequest, "invalid key")
		return
	}
	JSON(w, http.StatusOK, h.calc.Press(req.Key))
}

// HandleState returns the full public state
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.store.Snapshot().Public())
}

// HandleRegister creates an account and logs it in
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req usecase.Registration
	if err := decode(w, r, h.bodyLimit(), &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	u, err := h.store.Register(r.Context(), req)
	if err != nil {
		Error(w, statusFor(err), err.Error())
		return
	}
	JSON(w, http.StatusCreated, u.Public())
}

// HandleLogin authenticates an existing account
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(w, r, h.bodyLimit(), &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	u, err := h.store.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		Error(w, statusFor(err), err.Error())
		return
	}
	JSON(w, http.StatusOK, u.Public())
}

// HandleLogout ends the session
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Logout(r.Context()); err != nil {
		Error(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateProfile edits the session user's display name and avatar
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	current, ok := h.store.CurrentUser()
	if !ok {
		Error(w, http.StatusUnauthorized, domain.ErrNotLoggedIn.Error())
		return
	}
	var req struct {
		DisplayName string `json:"displayName"`
		Avatar      string `json:"avatar"`
	}
	if err := decode(w, r, h.bodyLimit(), &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	current.DisplayName = req.DisplayName
	current.Avatar = req.Avatar

	u, err := h.store.UpdateProfile(r.Context(), current)
	if err != nil {
		Error(w, statusFor(err), err.Error())
		return
	}
	JSON(w, http.StatusOK, u.Public())
}

// HandleChats lists the chat surfaces for the session user
func (h *Handler) HandleChats(w http.ResponseWriter, r *http.Request) {
	current, ok := h.store.CurrentUser()
	if !ok {
		Error(w, http.StatusUnauthorized, domain.ErrNotLoggedIn.Error())
		return
	}
	JSON(w, http.StatusOK, usecase.ChatSummaries(h.store.Snapshot(), current.ID))
}

// messageView is a message with its aggregated reaction badges
type messageView struct {
	domain.Message
	Groups []domain.ReactionGroup `json:"reactionGroups"`
}

// HandleConversation returns one chat surface. The target "global" is the
// broadcast room, anything else is a user id.
func (h *Handler) HandleConversation(w http.ResponseWriter, r *http.Request) {
	current, ok := h.store.CurrentUser()
	if !ok {
		Error(w, http.StatusUnauthorized, domain.ErrNotLoggedIn.Error())
		return
	}
	target := chi.URLParam(r, "target")
	if target != domain.BroadcastID {
		if _, ok := h.store.FindUser(target); !ok {
			Error(w, http.StatusNotFound, domain.ErrUserNotFound.Error())
			return
		}
	}

	messages := usecase.Conversation(h.store.Messages(), current.ID, target)
	views := make([]messageView, len(messages))
	for i, m := range messages {
		views[i] = messageView{Message: m, Groups: m.ReactionGroups()}
	}
	JSON(w, http.StatusOK, views)
}

// HandleSendMessage records a message; replies from the assistant arrive
// later through the websocket
func (h *Handler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text       string `json:"text"`
		ReceiverID string `json:"receiverId"`
	}
	if err := decode(w, r, h.bodyLimit(), &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	text, ok := cleanMessage(req.Text, h.cfg.MaxMessageSize)
	if !ok {
		Error(w, http.StatusBadRequest, "message text is empty or too long")
		return
	}
	if req.ReceiverID == "" {
		req.ReceiverID = domain.BroadcastID
	}
	if req.ReceiverID != domain.BroadcastID {
		if _, ok := h.store.FindUser(req.ReceiverID); !ok {
			Error(w, http.StatusNotFound, domain.ErrUserNotFound.Error())
			return
		}
	}

	m, err := h.bridge.Send(r.Context(), text, req.ReceiverID)
	if err != nil {
		Error(w, statusFor(err), err.Error())
		return
	}
	JSON(w, http.StatusCreated, m)
}

// HandleToggleReaction flips the session user's emoji on a message
func (h *Handler) HandleToggleReaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Emoji string `json:"emoji"`
	}
	if err := decode(w, r, 1024, &req); err != nil || !IsAllowedEmoji(req.Emoji) {
		Error(w, http.StatusBadRequest, "invalid emoji")
		return
	}
	if err := h.store.ToggleReaction(r.Context(), chi.URLParam(r, "id"), req.Emoji); err != nil {
		Error(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleWebSocket upgrades to a push-only connection fed by the hub
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	var userID string
	if u, ok := h.store.CurrentUser(); ok {
		userID = u.ID
	}
	client := ws.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
