package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*TTSService, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	s := NewTTSService(dir, "static/audio")
	s.endpoint = server.URL
	s.client = server.Client()
	return s, dir
}

func TestFilename(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Necessary", "word_necessary.mp3"},
		{"  ice cream ", "word_ice_cream.mp3"},
		{"café", "word_cafe.mp3"},
		{"   ", "word_blank.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Filename(tt.text); got != tt.want {
				t.Errorf("Filename(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestGenerateCachesClip(t *testing.T) {
	var calls atomic.Int32
	s, dir := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("q") != "rhythm" {
			t.Errorf("q = %q", r.URL.Query().Get("q"))
		}
		w.Write([]byte("ID3-audio"))
	})

	for i := 0; i < 2; i++ {
		url, err := s.Generate(context.Background(), "rhythm")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if url != "/static/audio/word_rhythm.mp3" {
			t.Errorf("Generate() = %q", url)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("endpoint called %d times, want 1", calls.Load())
	}

	data, err := os.ReadFile(filepath.Join(dir, "word_rhythm.mp3"))
	if err != nil || string(data) != "ID3-audio" {
		t.Errorf("cached clip = %q, %v", data, err)
	}

	files, err := s.ListFiles()
	if err != nil || len(files) != 1 {
		t.Errorf("ListFiles() = %v, %v", files, err)
	}

	if err := s.Delete("rhythm"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := s.Delete("rhythm"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	s, dir := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if _, err := s.Generate(context.Background(), "queue"); err == nil {
		t.Fatal("Generate() should fail on a non-200 response")
	}
	if _, err := os.Stat(filepath.Join(dir, "word_queue.mp3")); !os.IsNotExist(err) {
		t.Error("failed download must not leave a clip behind")
	}

	if _, err := s.Generate(context.Background(), " "); err == nil {
		t.Error("blank text should be rejected")
	}
}
