package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// rawLogLimit bounds how much model text is attached to a ParseError.
const rawLogLimit = 2000

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiGenerateRequest struct {
	Contents       []geminiContent       `json:"contents"`
	SafetySettings []geminiSafetySetting `json:"safetySettings,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

var relaxedSafetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

type completion struct {
	parts         []geminiPart
	relaxedSafety bool
}

// Option customizes a single CompleteJSON call.
type Option func(*completion)

// WithImage inlines one image after the prompt text. Order of calls is
// preserved in the request.
func WithImage(mimeType string, data []byte) Option {
	return func(c *completion) {
		c.parts = append(c.parts, geminiPart{
			InlineData: &geminiInlineData{
				MIMEType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(data),
			},
		})
	}
}

// WithRelaxedSafety disables the harm-category blockers. Finance
// questions trip them surprisingly often.
func WithRelaxedSafety() Option {
	return func(c *completion) {
		c.relaxedSafety = true
	}
}

// Client calls the generative-language API and extracts a structured
// JSON payload out of the free-form answer.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBaseURL exists for tests pointed at a fake server.
func NewClientWithBaseURL(apiKey, model, baseURL string) *Client {
	c := NewClient(apiKey, model)
	c.baseURL = baseURL
	return c
}

// CompleteJSON sends the prompt (plus any inlined images) and returns
// the first balanced JSON region of the answer. Errors follow the
// package taxonomy: ErrQuotaExceeded, *UpstreamError, *ParseError.
func (c *Client) CompleteJSON(ctx context.Context, prompt string, opts ...Option) (json.RawMessage, error) {
	comp := &completion{parts: []geminiPart{{Text: prompt}}}
	for _, opt := range opts {
		opt(comp)
	}

	payload := geminiGenerateRequest{
		Contents: []geminiContent{{Parts: comp.parts}},
	}
	if comp.relaxedSafety {
		payload.SafetySettings = relaxedSafetySettings
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	url := c.baseURL + "/models/" + c.model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	if res.StatusCode == http.StatusTooManyRequests {
		return nil, ErrQuotaExceeded
	}
	if res.StatusCode != http.StatusOK {
		return nil, &UpstreamError{StatusCode: res.StatusCode, Body: truncate(string(resBody), rawLogLimit)}
	}

	var geminiRes geminiGenerateResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return nil, &ParseError{Raw: truncate(string(resBody), rawLogLimit), Err: err}
	}
	if len(geminiRes.Candidates) == 0 || len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return nil, &ParseError{Raw: truncate(string(resBody), rawLogLimit)}
	}

	raw := geminiRes.Candidates[0].Content.Parts[0].Text
	region, ok := ExtractJSON(raw)
	if !ok {
		return nil, &ParseError{Raw: truncate(raw, rawLogLimit)}
	}
	if err := json.Unmarshal([]byte(region), new(any)); err != nil {
		return nil, &ParseError{Raw: truncate(raw, rawLogLimit), Err: err}
	}

	return json.RawMessage(region), nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "...(truncated)"
}
