package ws

import (
	"context"
	"net/http"
	"path"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	appconfig "github.com/saker-ai/classroom-avatar/internal/config"
	"github.com/saker-ai/classroom-avatar/internal/controller"
	"github.com/saker-ai/classroom-avatar/internal/logger"
	"github.com/saker-ai/classroom-avatar/internal/metrics"
	"github.com/saker-ai/classroom-avatar/internal/model"
	"github.com/saker-ai/classroom-avatar/internal/protocol"
	"github.com/saker-ai/classroom-avatar/internal/storage"
)

// Handler upgrades /client-ws connections and runs one controller per client.
type Handler struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader
	config   appconfig.Config
	journal  *storage.Journal
	models   *model.Registry
	clock    clockwork.Clock
	sessions map[string]*session
	mu       sync.Mutex
}

type session struct {
	conn       *websocket.Conn
	sendMu     sync.Mutex
	logger     *zap.Logger
	handler    *Handler
	clientUID  string
	controller *controller.Controller

	mu         sync.Mutex
	character  appconfig.CharacterConfig
	historyUID string
}

// NewHandler creates the websocket handler. models may be shared with the
// HTTP clip endpoint and the model watcher.
func NewHandler(logger *zap.Logger, cfg appconfig.Config, models *model.Registry) *Handler {
	if models == nil {
		models = model.NewRegistry(logger, cfg.ModelsDir)
	}
	return &Handler{
		logger:   logger,
		config:   cfg,
		journal:  storage.NewJournal(cfg.ChatHistoryDir),
		models:   models,
		clock:    clockwork.NewRealClock(),
		sessions: make(map[string]*session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle serves one client connection until it closes.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sessionID := uuid.NewString()
	sess := &session{
		conn:      conn,
		logger:    logger.ForSession(h.logger, sessionID),
		handler:   h,
		clientUID: sessionID,
		character: h.config.CharacterConfig,
	}
	opts := controllerOptions(h.config.Behavior, sess.character)
	opts.OnInteraction = sess.onInteraction
	sess.controller = controller.New(sess.logger, h.clock, sess, opts)

	sess.logger.Info("ws session opened",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("conf_uid", sess.character.ConfUID),
	)
	h.registerSession(sess)
	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := sess.controller.Run(ctx); err != nil && ctx.Err() == nil {
			sess.logger.Warn("controller stopped", zap.Error(err))
		}
	}()

	sess.sendModel()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			sess.logger.Debug("ws connection closed", zap.Error(err))
			break
		}
		event, err := protocol.Decode(data)
		if err != nil {
			sess.sendJSON(protocol.ErrorFrame("invalid json"))
			continue
		}
		if event.Type != protocol.TypeHeartbeat {
			sess.logger.Debug("ws incoming message", zap.String("type", event.Type))
		}
		sess.dispatchIncoming(ctx, event)
	}

	sess.controller.Close()
	cancel()
	<-loopDone
	h.unregisterSession(sess.clientUID)
	sess.logger.Info("ws session closed")
}

// SessionCount returns the number of connected clients.
func (h *Handler) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// NotifyModelChanged resends set-model to clients using the changed file.
func (h *Handler) NotifyModelChanged(file string) {
	name := filepath.Base(file)
	h.mu.Lock()
	affected := make([]*session, 0, len(h.sessions))
	for _, sess := range h.sessions {
		if filepath.Base(sess.currentCharacter().ModelFile) == name {
			affected = append(affected, sess)
		}
	}
	h.mu.Unlock()
	for _, sess := range affected {
		sess.sendModel()
	}
}

func (h *Handler) registerSession(sess *session) {
	h.mu.Lock()
	h.sessions[sess.clientUID] = sess
	h.mu.Unlock()
}

func (h *Handler) unregisterSession(clientUID string) {
	h.mu.Lock()
	delete(h.sessions, clientUID)
	h.mu.Unlock()
}

func (s *session) currentCharacter() appconfig.CharacterConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.character
}

func (s *session) sendModel() {
	character := s.currentCharacter()
	frame := setModelFrame{
		Type:           protocol.TypeSetModel,
		ClientUID:      s.clientUID,
		ConfName:       character.ConfName,
		ConfUID:        character.ConfUID,
		CharacterName:  character.CharacterName,
		ModelURL:       path.Join("/models", filepath.ToSlash(character.ModelFile)),
		Clips:          character.Clips,
		AvailableClips: []string{},
		PixelsPerUnit:  s.handler.config.Behavior.PixelsPerUnit,
	}
	// The client sizes its camera from this so the movement bounds match the canvas.
	if frame.PixelsPerUnit <= 0 {
		frame.PixelsPerUnit = controller.DefaultOptions().PixelsPerUnit
	}
	catalog, err := s.handler.models.Get(character.ModelFile)
	if err != nil {
		s.logger.Warn("model clips unavailable", zap.String("model_file", character.ModelFile), zap.Error(err))
	} else {
		frame.AvailableClips = catalog.Clips
		for _, state := range catalog.Missing(character.Clips) {
			s.logger.Warn("configured clip missing from model",
				zap.String("state", state),
				zap.String("clip", character.Clips[state]),
				zap.String("model_file", character.ModelFile),
				zap.Error(model.ErrClipNotFound),
			)
		}
	}
	s.sendJSON(frame)
}

// onInteraction runs on the controller goroutine after each transcript.
func (s *session) onInteraction(in controller.Interaction) {
	s.sendJSON(transcriptFrame{
		Type:     protocol.TypeTranscript,
		Text:     in.Transcript,
		Intent:   string(in.Intent),
		Response: in.Response,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	journal := s.handler.journal
	if s.historyUID == "" {
		uid, err := journal.Create(s.character.ConfUID)
		if err != nil {
			s.logger.Warn("history create failed", zap.Error(err))
			return
		}
		s.historyUID = uid
		s.sendJSON(map[string]any{"type": protocol.TypeNewHistoryCreated, "history_uid": uid})
	}
	messages := []storage.HistoryMessage{{Role: storage.RoleHuman, Content: in.Transcript, Intent: string(in.Intent)}}
	if in.Response != "" {
		messages = append(messages, storage.HistoryMessage{Role: storage.RoleAI, Content: in.Response, Name: s.character.CharacterName})
	}
	if err := journal.Append(s.character.ConfUID, s.historyUID, messages...); err != nil {
		s.logger.Warn("history append failed", zap.String("history_uid", s.historyUID), zap.Error(err))
	}
}

func (s *session) post(msg controller.Message) {
	if err := s.controller.Post(msg); err != nil {
		s.logger.Debug("controller message dropped", zap.Error(err))
	}
}

func (s *session) sendJSON(payload any) {
	data, err := protocol.Encode(payload)
	if err != nil {
		s.logger.Warn("ws encode failed", zap.Error(err))
		return
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("ws send failed", zap.Error(err))
	}
}
