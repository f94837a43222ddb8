package transcribe

import (
	"context"
	"io"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/common/config"
	"github.com/storecrew/storecrew/internal/common/errorx"
)

const defaultBaseURL = "https://api.openai.com"

type transcription struct {
	Text string `json:"text"`
}

// Client converts recorded audio to text via a Whisper-compatible
// transcription API.
type Client struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

// NewClient creates a transcription client
func NewClient(cfg *config.TranscribeConfig, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey)

	return &Client{httpClient: client, model: cfg.Model, logger: logger.Named("transcribe")}
}

// Transcribe uploads the audio and returns the recognized text. The
// optional prompt biases recognition toward domain vocabulary.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader, prompt string) (string, error) {
	req := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", filename, audio).
		SetFormData(map[string]string{"model": c.model})
	if prompt != "" {
		req.SetFormData(map[string]string{"prompt": prompt})
	}

	var body transcription
	resp, err := req.SetResult(&body).Post("/v1/audio/transcriptions")
	if err != nil {
		c.logger.Error("transcription request failed", zap.Error(err))
		return "", errorx.ErrTransport.WithDetail("cause", err.Error())
	}
	if resp.IsError() {
		c.logger.Error("transcription rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))
		return "", errorx.ErrTransport.WithDetail("status", resp.StatusCode())
	}
	return body.Text, nil
}
