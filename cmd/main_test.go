package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipsCommand(t *testing.T) {
	root := t.TempDir()
	t.Setenv("CLASSROOM_ROOT_DIR", root)
	models := filepath.Join(root, "webassets", "models")
	require.NoError(t, os.MkdirAll(models, 0o755))
	body := `{"asset":{"version":"2.0"},"animations":[{"name":"idle","channels":[],"samplers":[]},{"name":"wave","channels":[],"samplers":[]}]}`
	require.NoError(t, os.WriteFile(filepath.Join(models, "teacher.gltf"), []byte(body), 0o644))
	conf := "character_config:\n  model_file: teacher.gltf\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "conf.yaml"), []byte(conf), 0o644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"clips", "--config", filepath.Join(root, "conf.yaml")})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "teacher.gltf: idle, wave")
	assert.Contains(t, out.String(), `missing clip for jump: "Jump"`)
}

func TestClipsCommandMissingModel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"clips", filepath.Join(t.TempDir(), "none.glb")})
	assert.Error(t, cmd.Execute())
}
