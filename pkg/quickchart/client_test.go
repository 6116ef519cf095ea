package quickchart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChart(t *testing.T) {
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"success": true, "url": "https://quickchart.io/chart/render/abc"}`))
	}))
	defer server.Close()

	client := NewClientWithEndpoint(server.URL)
	url, err := client.CreateChart(context.Background(), Config{
		Type: "line",
		Data: map[string]any{
			"labels":   []string{"08/28", "08/29"},
			"datasets": []Dataset{{Label: "活存", Data: []float64{150, 151}}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "https://quickchart.io/chart/render/abc", url)

	assert.Equal(t, "#121212", gotPayload["backgroundColor"])
	chart := gotPayload["chart"].(map[string]any)
	assert.Equal(t, "line", chart["type"])
	// Dark theme defaults are applied on the way out.
	options := chart["options"].(map[string]any)
	assert.Contains(t, options, "scales")
	assert.Contains(t, options, "legend")
}

func TestCreateChartUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClientWithEndpoint(server.URL)
	_, err := client.CreateChart(context.Background(), Config{Type: "line"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestCreateChartEmptyURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false}`))
	}))
	defer server.Close()

	client := NewClientWithEndpoint(server.URL)
	_, err := client.CreateChart(context.Background(), Config{Type: "line"})

	require.Error(t, err)
}
