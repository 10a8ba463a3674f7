package webassets

import (
	"io/fs"
	"strings"
	"testing"
)

func TestSubdirClassroom(t *testing.T) {
	root, err := Subdir("classroom")
	if err != nil {
		t.Fatalf("Subdir error: %v", err)
	}
	for _, name := range []string{"index.html", "app.js"} {
		if _, err := fs.Stat(root, name); err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
	}
}

func TestSubdirMissing(t *testing.T) {
	if _, err := Subdir("live2d-models"); err == nil {
		t.Fatal("Subdir error=nil, want error for missing dir")
	}
}

func readClassroomFile(t *testing.T, name string) string {
	t.Helper()
	root, err := Subdir("classroom")
	if err != nil {
		t.Fatalf("Subdir error: %v", err)
	}
	data, err := fs.ReadFile(root, name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func TestClassroomReplaysClipAfterModelLoad(t *testing.T) {
	src := readClassroomFile(t, "app.js")
	for _, want := range []string{
		"lastClip = { name, loop };",
		"if (lastClip) playClip(lastClip.name, lastClip.loop);",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("app.js missing %q", want)
		}
	}
	// The replay must run inside the loader callback, after the actions exist.
	load := strings.Index(src, "function loadModel(")
	replay := strings.Index(src, "if (lastClip) playClip(")
	next := strings.Index(src, "function playClip(")
	if load < 0 || replay < load || replay > next {
		t.Fatalf("clip replay not inside loadModel (load=%d replay=%d playClip=%d)", load, replay, next)
	}
}

func TestClassroomRendersCommandHintAndSpeakingLabel(t *testing.T) {
	src := readClassroomFile(t, "app.js")
	for _, want := range []string{
		"fetch('/api/commands')",
		"if (!transcriptEl.textContent) transcriptEl.textContent = hint;",
		"speakBtn.textContent = 'Speaking...';",
		"speakBtn.textContent = 'Speak Intro';",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("app.js missing %q", want)
		}
	}
	if html := readClassroomFile(t, "index.html"); !strings.Contains(html, `<button id="speak-intro">Speak Intro</button>`) {
		t.Fatal("index.html missing speak-intro button")
	}
}

func TestClassroomCameraFollowsPixelsPerUnit(t *testing.T) {
	src := readClassroomFile(t, "app.js")
	for _, want := range []string{
		"if (f.pixels_per_unit > 0) pixelsPerUnit = f.pixels_per_unit;",
		"const visibleHeight = window.innerHeight / pixelsPerUnit;",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("app.js missing %q", want)
		}
	}
	if strings.Count(src, "fitCamera();") < 3 {
		t.Fatal("fitCamera should run at startup, on set-model and on resize")
	}
}
