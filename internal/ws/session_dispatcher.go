package ws

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	appconfig "github.com/saker-ai/classroom-avatar/internal/config"
	"github.com/saker-ai/classroom-avatar/internal/controller"
	"github.com/saker-ai/classroom-avatar/internal/protocol"
)

type incomingHandler func(context.Context, protocol.ClientEvent)

func (s *session) dispatchIncoming(ctx context.Context, event protocol.ClientEvent) {
	handlers := map[string]incomingHandler{
		protocol.TypeHello:              s.onHello,
		protocol.TypeRecognitionResult:  s.onRecognitionResult,
		protocol.TypeRecognitionError:   s.onRecognitionError,
		protocol.TypeRecognitionEnd:     s.onNoop,
		protocol.TypeSynthesisStart:     s.onSynthesisStart,
		protocol.TypeSynthesisEnd:       s.onSynthesisEnd,
		protocol.TypeVoices:             s.onVoices,
		protocol.TypeResize:             s.onResize,
		protocol.TypeStartListening:     s.onStartListening,
		protocol.TypeSpeakIntro:         s.onSpeakIntro,
		protocol.TypeTextInput:          s.onTextInput,
		protocol.TypeFetchConfigs:       s.onFetchConfigs,
		protocol.TypeSwitchConfig:       s.onSwitchConfig,
		protocol.TypeFetchHistoryList:   s.onFetchHistoryList,
		protocol.TypeFetchAndSetHistory: s.onFetchAndSetHistory,
		protocol.TypeCreateNewHistory:   s.onCreateNewHistory,
		protocol.TypeDeleteHistory:      s.onDeleteHistory,
		protocol.TypeHeartbeat:          s.onNoop,
	}

	if handler, ok := handlers[event.Type]; ok {
		handler(ctx, event)
		return
	}
	s.logger.Debug("ws unknown message type", zap.String("type", event.Type))
}

func (s *session) onHello(_ context.Context, event protocol.ClientEvent) {
	s.post(controller.CapabilitiesReported{
		SpeechRecognition: event.SpeechRecognition,
		SpeechSynthesis:   event.SpeechSynthesis,
		ViewportWidth:     event.Width,
	})
}

func (s *session) onRecognitionResult(_ context.Context, event protocol.ClientEvent) {
	if !event.IsFinal() {
		return
	}
	s.post(controller.TranscriptReceived{Text: event.Text})
}

func (s *session) onRecognitionError(_ context.Context, event protocol.ClientEvent) {
	s.post(controller.RecognitionFailed{Reason: event.Error})
}

func (s *session) onSynthesisStart(_ context.Context, event protocol.ClientEvent) {
	s.post(controller.SynthesisStarted{UtteranceID: event.UtteranceID})
}

func (s *session) onSynthesisEnd(_ context.Context, event protocol.ClientEvent) {
	s.post(controller.SynthesisEnded{UtteranceID: event.UtteranceID})
}

func (s *session) onVoices(_ context.Context, event protocol.ClientEvent) {
	voices := make([]controller.Voice, 0, len(event.Voices))
	for _, v := range event.Voices {
		voices = append(voices, controller.Voice{Name: v.Name, Lang: v.Lang, Default: v.Default})
	}
	s.post(controller.VoicesChanged{Voices: voices})
}

func (s *session) onResize(_ context.Context, event protocol.ClientEvent) {
	s.post(controller.ViewportResized{Width: event.Width})
}

func (s *session) onStartListening(_ context.Context, _ protocol.ClientEvent) {
	s.post(controller.ListenRequested{})
}

func (s *session) onSpeakIntro(_ context.Context, _ protocol.ClientEvent) {
	s.post(controller.SpeakRequested{})
}

func (s *session) onTextInput(_ context.Context, event protocol.ClientEvent) {
	if strings.TrimSpace(event.Text) == "" {
		return
	}
	s.post(controller.TranscriptReceived{Text: event.Text})
}

func (s *session) onFetchConfigs(_ context.Context, _ protocol.ClientEvent) {
	cfg := s.handler.config
	files, err := appconfig.ScanConfigFiles(cfg.RootDir, cfg.ConfigAltsDir)
	if err != nil {
		s.sendJSON(protocol.ErrorFrame(err.Error()))
		return
	}
	s.sendJSON(map[string]any{"type": protocol.TypeConfigFiles, "configs": files})
}

func (s *session) onSwitchConfig(_ context.Context, event protocol.ClientEvent) {
	if event.File == "" {
		return
	}
	cfg := s.handler.config
	configPath := filepath.Join(cfg.RootDir, "conf.yaml")
	if event.File != "conf.yaml" {
		configPath = filepath.Join(cfg.ConfigAltsDir, filepath.Base(event.File))
	}
	conf, err := appconfig.ReadCharacterConfig(configPath)
	if err != nil {
		s.sendJSON(protocol.ErrorFrame(err.Error()))
		return
	}
	character := appconfig.MergeCharacter(cfg.CharacterConfig, conf)

	s.mu.Lock()
	s.character = character
	s.historyUID = ""
	s.mu.Unlock()

	s.post(controller.ScriptChanged{Options: controllerOptions(cfg.Behavior, character)})
	s.logger.Info("character switched", zap.String("file", event.File), zap.String("conf_uid", character.ConfUID))
	s.sendModel()
	s.sendJSON(map[string]any{"type": protocol.TypeConfigSwitched, "conf_name": character.ConfName})
}

func (s *session) onFetchHistoryList(_ context.Context, _ protocol.ClientEvent) {
	histories := s.handler.journal.List(s.currentCharacter().ConfUID)
	s.sendJSON(map[string]any{"type": protocol.TypeHistoryList, "histories": histories})
}

func (s *session) onFetchAndSetHistory(_ context.Context, event protocol.ClientEvent) {
	if event.HistoryUID == "" {
		return
	}
	s.mu.Lock()
	messages, err := s.handler.journal.Get(s.character.ConfUID, event.HistoryUID)
	if err == nil {
		s.historyUID = event.HistoryUID
	}
	s.mu.Unlock()
	if err != nil {
		s.sendJSON(protocol.ErrorFrame(err.Error()))
		return
	}
	s.sendJSON(map[string]any{"type": protocol.TypeHistoryData, "messages": messages})
}

func (s *session) onCreateNewHistory(_ context.Context, _ protocol.ClientEvent) {
	s.mu.Lock()
	historyUID, err := s.handler.journal.Create(s.character.ConfUID)
	if err == nil {
		s.historyUID = historyUID
	}
	s.mu.Unlock()
	if err != nil {
		s.sendJSON(protocol.ErrorFrame(err.Error()))
		return
	}
	s.sendJSON(map[string]any{"type": protocol.TypeNewHistoryCreated, "history_uid": historyUID})
}

func (s *session) onDeleteHistory(_ context.Context, event protocol.ClientEvent) {
	if event.HistoryUID == "" {
		return
	}
	s.mu.Lock()
	success := s.handler.journal.Delete(s.character.ConfUID, event.HistoryUID)
	if success && s.historyUID == event.HistoryUID {
		s.historyUID = ""
	}
	s.mu.Unlock()
	s.sendJSON(map[string]any{"type": protocol.TypeHistoryDeleted, "success": success, "history_uid": event.HistoryUID})
}

func (s *session) onNoop(_ context.Context, _ protocol.ClientEvent) {}
