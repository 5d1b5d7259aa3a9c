package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/quarrylabs/corpus/ai"
	"github.com/quarrylabs/corpus/core"
)

// audioFileNames maps media MIME types to the file names the transcription
// endpoint uses to sniff the container format.
var audioFileNames = map[string]string{
	"audio/mpeg":      "audio.mp3",
	"audio/mp3":       "audio.mp3",
	"audio/mp4":       "audio.m4a",
	"audio/wav":       "audio.wav",
	"audio/x-wav":     "audio.wav",
	"audio/webm":      "audio.webm",
	"audio/ogg":       "audio.ogg",
	"audio/flac":      "audio.flac",
	"video/mp4":       "video.mp4",
	"video/mpeg":      "video.mpeg",
	"video/webm":      "video.webm",
	"video/quicktime": "video.mov",
}

// Transcriber implements ai.Transcriber against an OpenAI-compatible
// /audio/transcriptions endpoint. langchaingo has no audio API, so the
// multipart request is issued directly.
type Transcriber struct {
	endpoint string
	model    string
	client   *http.Client
	logger   *slog.Logger
}

// transcriptionResponse is the JSON body of a successful transcription call.
type transcriptionResponse struct {
	Text string `json:"text"`
}

// newTranscriber is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTranscriber(config *ai.Config) (*Transcriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Transcriber{
		endpoint: config.AudioHost + "/audio/transcriptions",
		model:    config.TranscriptionModel,
		client:   &http.Client{Timeout: 5 * time.Minute},
		logger:   slog.Default().With("component", "openai-transcriber"),
	}, nil
}

// NewTranscriber creates a new transcription service using the provided configuration.
//
// Returns ai.Transcriber interface to enforce abstraction.
func NewTranscriber(config *ai.Config) (ai.Transcriber, error) {
	return newTranscriber(config)
}

// Transcribe produces a text transcription of the given media bytes.
func (t *Transcriber) Transcribe(ctx context.Context, data []byte, mediaType string) (string, error) {
	fileName, ok := audioFileNames[mediaType]
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrUnsupportedMediaType, mediaType)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty media payload", core.ErrInvalidInput)
	}

	t.logger.Debug("transcribing media", "media_type", mediaType, "bytes", len(data))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.WriteField("model", t.model); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer none")

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Error("transcription request failed", "err", err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		t.logger.Error("transcription rejected", "status", resp.StatusCode)
		return "", fmt.Errorf("transcription failed: %s: %s", resp.Status, detail)
	}

	var result transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding transcription response: %w", err)
	}

	return result.Text, nil
}
