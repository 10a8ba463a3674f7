package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appconfig "github.com/saker-ai/classroom-avatar/internal/config"
	"github.com/saker-ai/classroom-avatar/internal/model"
	"github.com/saker-ai/classroom-avatar/internal/ws"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	models := filepath.Join(root, "models")
	require.NoError(t, os.MkdirAll(models, 0o755))
	body := `{"asset":{"version":"2.0"},"animations":[{"name":"wave","channels":[],"samplers":[]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(models, "teacher.gltf"), []byte(body), 0o644))

	cfg := appconfig.Config{
		RootDir:        root,
		ModelsDir:      models,
		ChatHistoryDir: filepath.Join(root, "history"),
		CharacterConfig: appconfig.NormalizeCharacter(appconfig.CharacterConfig{
			ConfUID:   "ai_teacher",
			ModelFile: "teacher.gltf",
		}),
	}
	registry := model.NewRegistry(zap.NewNop(), models)
	return NewRouter(cfg, ws.NewHandler(zap.NewNop(), cfg, registry), registry, zap.NewNop())
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(t), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, rec.Body.String())
}

func TestClipsEndpoint(t *testing.T) {
	rec := get(t, newTestRouter(t), "/api/clips")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"file":"teacher.gltf"`)
	assert.Contains(t, rec.Body.String(), `"clips":["wave"]`)
}

func TestCommandsEndpoint(t *testing.T) {
	rec := get(t, newTestRouter(t), "/api/commands")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phrase":"introduce yourself"`)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	get(t, router, "/health")
	rec := get(t, router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "classroom_http_requests_total")
}

func TestFrontendAndModels(t *testing.T) {
	router := newTestRouter(t)

	index := get(t, router, "/")
	require.Equal(t, http.StatusOK, index.Code)
	assert.True(t, strings.Contains(index.Body.String(), "<html"))

	model := get(t, router, "/models/teacher.gltf")
	assert.Equal(t, http.StatusOK, model.Code)
}
