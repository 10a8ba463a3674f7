package ws

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saker-ai/classroom-avatar/internal/behavior"
	appconfig "github.com/saker-ai/classroom-avatar/internal/config"
	"github.com/saker-ai/classroom-avatar/internal/controller"
)

func testConfig(t *testing.T) appconfig.Config {
	t.Helper()
	root := t.TempDir()
	models := filepath.Join(root, "models")
	require.NoError(t, os.MkdirAll(models, 0o755))
	model := `{"asset":{"version":"2.0"},"animations":[` +
		`{"name":"idle","channels":[],"samplers":[]},` +
		`{"name":"wave","channels":[],"samplers":[]},` +
		`{"name":"Jump","channels":[],"samplers":[]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(models, "teacher.gltf"), []byte(model), 0o644))

	return appconfig.Config{
		RootDir:        root,
		ConfigAltsDir:  filepath.Join(root, "characters"),
		ModelsDir:      models,
		ChatHistoryDir: filepath.Join(root, "history"),
		CharacterConfig: appconfig.NormalizeCharacter(appconfig.CharacterConfig{
			ConfName:  "AI Teacher",
			ConfUID:   "ai_teacher",
			ModelFile: "teacher.gltf",
			Greeting:  "Hello there!",
			Clips:     map[string]string{"jump": "Jump"},
		}),
		Behavior: appconfig.BehaviorConfig{
			WaveRevertMs:        5000,
			JumpRevertMs:        5000,
			MoveCooldownMs:      3000,
			PixelsPerUnit:       100,
			AvatarHalfWidth:     1,
			ViewportWidth:       1280,
			VoicePollIntervalMs: 1000,
		},
	}
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, h *Handler) *wsClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.Handle))
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(frame string) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

// until reads frames until one has the wanted type.
func (c *wsClient) until(frameType string) map[string]any {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))
		_, data, err := c.conn.ReadMessage()
		require.NoError(c.t, err, "waiting for %s", frameType)
		var frame map[string]any
		require.NoError(c.t, sonic.ConfigStd.Unmarshal(data, &frame))
		if frame["type"] == frameType {
			return frame
		}
	}
}

func (c *wsClient) ready() {
	c.t.Helper()
	c.until("set-model")
	c.send(`{"type":"hello","speech_recognition":true,"speech_synthesis":true,"width":2200}`)
	c.until("request-voices")
	c.send(`{"type":"voices","voices":[{"name":"Samantha","lang":"en-US"}]}`)
}

func TestSessionSendsModelOnConnect(t *testing.T) {
	c := dial(t, NewHandler(zap.NewNop(), testConfig(t), nil))

	frame := c.until("set-model")
	assert.Equal(t, "ai_teacher", frame["conf_uid"])
	assert.Equal(t, "/models/teacher.gltf", frame["model_url"])
	assert.Equal(t, []any{"idle", "wave", "Jump"}, frame["available_clips"])
	assert.Equal(t, 100.0, frame["pixels_per_unit"])
}

func TestSessionModelFrameDefaultsPixelsPerUnit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Behavior.PixelsPerUnit = 0
	c := dial(t, NewHandler(zap.NewNop(), cfg, nil))

	frame := c.until("set-model")
	assert.Equal(t, controller.DefaultOptions().PixelsPerUnit, frame["pixels_per_unit"])
}

func TestSessionGreetingFlow(t *testing.T) {
	c := dial(t, NewHandler(zap.NewNop(), testConfig(t), nil))
	c.ready()

	c.send(`{"type":"recognition-result","text":"Hello teacher"}`)
	anim := c.until("play-animation")
	assert.Equal(t, "wave", anim["state"])
	speak := c.until("speak")
	assert.Equal(t, "Hello there!", speak["text"])
	assert.Equal(t, "Samantha", speak["voice"])
	transcript := c.until("transcript")
	assert.Equal(t, "greet", transcript["intent"])
	assert.Equal(t, "Hello there!", transcript["response"])
	created := c.until("new-history-created")

	c.send(`{"type":"synthesis-start","utterance_id":"` + speak["utterance_id"].(string) + `"}`)
	mouth := c.until("mouth")
	assert.Equal(t, true, mouth["open"])

	c.send(`{"type":"fetch-and-set-history","history_uid":"` + created["history_uid"].(string) + `"}`)
	data := c.until("history-data")
	messages := data["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "Hello teacher", messages[0].(map[string]any)["content"])
	assert.Equal(t, "Hello there!", messages[1].(map[string]any)["content"])
}

func TestSessionTypedMove(t *testing.T) {
	c := dial(t, NewHandler(zap.NewNop(), testConfig(t), nil))
	c.ready()

	c.send(`{"type":"text-input","text":"please move left"}`)
	pos := c.until("set-position")
	assert.Equal(t, -2.0, pos["x"])
	assert.Equal(t, -10.0, pos["min"])
}

func TestSessionInterimResultIgnored(t *testing.T) {
	c := dial(t, NewHandler(zap.NewNop(), testConfig(t), nil))
	c.ready()

	c.send(`{"type":"recognition-result","text":"hello","final":false}`)
	c.send(`{"type":"recognition-result","text":"move right"}`)
	transcript := c.until("transcript")
	assert.Equal(t, "move_right", transcript["intent"])
}

func TestSessionInvalidJSON(t *testing.T) {
	c := dial(t, NewHandler(zap.NewNop(), testConfig(t), nil))
	c.until("set-model")

	c.send(`{oops`)
	frame := c.until("error")
	assert.Equal(t, "invalid json", frame["message"])
}

func TestSessionSwitchConfig(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.ConfigAltsDir, 0o755))
	alt := "character_config:\n  conf_name: Science\n  greeting: Good morning!\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ConfigAltsDir, "science.yaml"), []byte(alt), 0o644))
	c := dial(t, NewHandler(zap.NewNop(), cfg, nil))
	c.ready()

	c.send(`{"type":"fetch-configs"}`)
	files := c.until("config-files")
	assert.Len(t, files["configs"], 2)

	c.send(`{"type":"switch-config","file":"science.yaml"}`)
	model := c.until("set-model")
	assert.Equal(t, "Science", model["conf_uid"])
	c.until("config-switched")

	c.send(`{"type":"text-input","text":"hello teacher"}`)
	speak := c.until("speak")
	assert.Equal(t, "Good morning!", speak["text"])
}

func TestControllerOptionsMapping(t *testing.T) {
	cfg := testConfig(t)
	opts := controllerOptions(cfg.Behavior, cfg.CharacterConfig)

	assert.Equal(t, 5*time.Second, opts.Script.WaveRevert)
	assert.Equal(t, 3*time.Second, opts.MoveCooldown)
	assert.Equal(t, "Hello there!", opts.Script.Greeting)
	assert.Equal(t, "Jump", opts.Clips[behavior.AnimationJump])
	assert.Equal(t, "idle", opts.Clips[behavior.AnimationIdle])
}
