package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"BillAnalyzer/internal/config"
	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/logging"
	"BillAnalyzer/internal/ports"
)

// GeminiClient implements ports.CompletionService on the Gemini generateContent API.
type GeminiClient struct {
	endpoint        string
	model           string
	apiKey          string
	maxOutputTokens int
	maxResponse     int64
	httpClient      *http.Client
	logger          *slog.Logger
}

var _ ports.CompletionService = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.GeminiConfig, log *slog.Logger) *GeminiClient {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	maxResponse := cfg.MaxResponseBytes
	if maxResponse <= 0 {
		maxResponse = config.DefaultMaxResponseBytes
	}
	return &GeminiClient{
		endpoint:        generateContentURL(cfg.Endpoint, model),
		model:           model,
		apiKey:          strings.TrimSpace(cfg.APIKey),
		maxOutputTokens: cfg.MaxOutputTokens,
		maxResponse:     maxResponse,
		httpClient:      &http.Client{Timeout: cfg.Timeout()},
		logger:          logging.OrDiscard(log),
	}
}

// NewGeminiClientWithEndpoint points the client at a full generateContent URL (for testing).
func NewGeminiClientWithEndpoint(cfg config.GeminiConfig, endpoint string, log *slog.Logger) *GeminiClient {
	c := NewGeminiClient(cfg, log)
	c.endpoint = endpoint
	return c
}

// Model reports the configured model name.
func (c *GeminiClient) Model() string {
	return c.model
}

// CompleteStructured sends the attachment and instruction and returns the model's JSON text.
func (c *GeminiClient) CompleteStructured(ctx context.Context, req domain.CompletionRequest) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: gemini client is nil", domain.ErrConfiguration)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", domain.ErrConfiguration)
	}

	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("llm.complete.start",
		"req_id", rid,
		"model", c.model,
		"attachment_bytes", len(req.Attachment.Data),
		"instruction_len", len(req.Instruction),
	)

	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal gemini payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("llm.complete.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponse+1))
	if err != nil {
		return nil, fmt.Errorf("read gemini response: %w", err)
	}
	if int64(len(raw)) > c.maxResponse {
		c.logger.Error("llm.complete.too_large", "req_id", rid, "limit_bytes", c.maxResponse)
		return nil, fmt.Errorf("gemini response exceeds %d bytes", c.maxResponse)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("llm.complete.status", "req_id", rid, "status", resp.StatusCode, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("gemini error %s: %s", resp.Status, truncate(strings.TrimSpace(string(raw)), 512))
	}

	text, err := parseResponse(raw)
	if err != nil {
		c.logger.Error("llm.complete.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return nil, err
	}

	c.logger.Info("llm.complete.done", "req_id", rid, "output_len", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return []byte(text), nil
}

func (c *GeminiClient) buildRequest(req domain.CompletionRequest) map[string]any {
	mimeType := req.Attachment.MIMEType
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	generation := map[string]any{
		"responseMimeType": "application/json",
		"responseSchema":   ResponseSchema(req.Fields),
	}
	if c.maxOutputTokens > 0 {
		generation["maxOutputTokens"] = c.maxOutputTokens
	}

	return map[string]any{
		"contents": []map[string]any{
			{
				"role": "user",
				"parts": []map[string]any{
					{"text": req.Instruction},
					{
						"inline_data": map[string]any{
							"mime_type": mimeType,
							"data":      base64.StdEncoding.EncodeToString(req.Attachment.Data),
						},
					},
				},
			},
		},
		"generationConfig": generation,
	}
}

// ResponseSchema renders fields as a Gemini OpenAPI-subset object schema of required strings.
func ResponseSchema(fields []domain.AnalysisField) map[string]any {
	props := make(map[string]any, len(fields))
	order := make([]string, 0, len(fields))
	for _, f := range fields {
		props[f.Key] = map[string]any{"type": "STRING", "description": f.Description}
		order = append(order, f.Key)
	}
	return map[string]any{
		"type":             "OBJECT",
		"properties":       props,
		"required":         order,
		"propertyOrdering": order,
	}
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func parseResponse(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal gemini response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("empty gemini response: no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("empty gemini response: no text (finish reason %q)", resp.Candidates[0].FinishReason)
	}

	return sb.String(), nil
}

func generateContentURL(base, model string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = "https://generativelanguage.googleapis.com/v1beta/models"
	}
	return fmt.Sprintf("%s/%s:generateContent", base, model)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
