package quickchart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultEndpoint = "https://quickchart.io/chart/create"

	// PlaceholderURL is shown when chart creation fails; the card is
	// still sent.
	PlaceholderURL = "https://via.placeholder.com/500x300?text=Chart+Error"
)

// Config is a Chart.js configuration passed through to QuickChart.
type Config struct {
	Type    string         `json:"type"`
	Data    map[string]any `json:"data"`
	Options map[string]any `json:"options"`
}

// Dataset is one series on a chart.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
	Fill            bool      `json:"fill"`
	PointRadius     int       `json:"pointRadius"`
}

// Client renders chart configs into hosted image URLs.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		endpoint:   defaultEndpoint,
	}
}

// NewClientWithEndpoint exists for tests pointed at a fake server.
func NewClientWithEndpoint(endpoint string) *Client {
	c := NewClient()
	c.endpoint = endpoint
	return c
}

// CreateChart posts the config with the bot's dark theme applied and
// returns the hosted image URL.
func (c *Client) CreateChart(ctx context.Context, cfg Config) (string, error) {
	applyDarkTheme(&cfg)

	payload := map[string]any{
		"chart":           cfg,
		"width":           500,
		"height":          300,
		"backgroundColor": "#121212",
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("quickchart: status %d", res.StatusCode)
	}

	var parsed struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("quickchart: empty url in response")
	}
	return parsed.URL, nil
}

func applyDarkTheme(cfg *Config) {
	if cfg.Options == nil {
		cfg.Options = map[string]any{}
	}
	cfg.Options["layout"] = map[string]any{
		"padding": map[string]any{"left": 20, "right": 20, "top": 20, "bottom": 10},
	}
	cfg.Options["scales"] = map[string]any{
		"xAxes": []map[string]any{{
			"gridLines": map[string]any{"color": "#333333", "zeroLineColor": "#555555"},
			"ticks":     map[string]any{"fontColor": "#bbbbbb", "fontSize": 10},
		}},
		"yAxes": []map[string]any{{
			"gridLines": map[string]any{"color": "#333333", "zeroLineColor": "#555555"},
			"ticks":     map[string]any{"fontColor": "#bbbbbb", "fontSize": 10},
			"stacked":   true,
		}},
	}
	cfg.Options["legend"] = map[string]any{
		"labels": map[string]any{"fontColor": "#ffffff", "fontSize": 11},
	}
}
