// Package audio produces pronunciation clips for words.
package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

const (
	defaultTTSEndpoint = "https://translate.google.com/translate_tts"
	ttsRequestTimeout  = 10 * time.Second
	userAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Generator turns a word into a playable clip and returns its public URL
type Generator interface {
	Generate(ctx context.Context, text string) (string, error)
}

// TTSService fetches speech from Google Translate TTS and caches it as MP3 files
type TTSService struct {
	audioDir  string
	urlPrefix string
	endpoint  string
	client    *http.Client
}

// NewTTSService stores clips in audioDir and serves them under urlPrefix
func NewTTSService(audioDir, urlPrefix string) *TTSService {
	return &TTSService{
		audioDir:  audioDir,
		urlPrefix: urlPrefix,
		endpoint:  defaultTTSEndpoint,
		client:    &http.Client{Timeout: ttsRequestTimeout},
	}
}

// Filename returns the cache file name for text
func Filename(text string) string {
	name := slug.Make(strings.TrimSpace(text))
	if name == "" {
		name = "blank"
	}
	return "word_" + strings.ReplaceAll(name, "-", "_") + ".mp3"
}

// Generate returns the URL of the clip for text, fetching it on first use
func (s *TTSService) Generate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text is required")
	}

	filename := Filename(text)
	fullPath := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(fullPath); err == nil {
		return s.publicURL(filename), nil
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	if err := s.fetch(ctx, text, fullPath); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}

	return s.publicURL(filename), nil
}

func (s *TTSService) publicURL(filename string) string {
	return path.Join("/", s.urlPrefix, filename)
}

func (s *TTSService) fetch(ctx context.Context, text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Write to a temp file first so a failed download never leaves a truncated clip
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".tts-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	return os.Rename(tmp.Name(), outputPath)
}

// Delete removes the cached clip for text
func (s *TTSService) Delete(text string) error {
	err := os.Remove(filepath.Join(s.audioDir, Filename(text)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ListFiles returns all cached MP3 files
func (s *TTSService) ListFiles() ([]string, error) {
	files, err := os.ReadDir(s.audioDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audio directory: %w", err)
	}

	var audioFiles []string
	for _, file := range files {
		if !file.IsDir() && filepath.Ext(file.Name()) == ".mp3" {
			audioFiles = append(audioFiles, file.Name())
		}
	}
	return audioFiles, nil
}
