package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	notionVersion  = "2022-06-28"
)

// Client talks to the Notion HTTP API. Every call carries its own
// transport timeout; callers decide what a failure means.
type Client struct {
	httpClient *http.Client
	token      string
	baseURL    string
}

func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		token:      token,
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBaseURL exists for tests pointed at a fake server.
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

type queryResponse struct {
	Results []struct {
		ID         string                   `json:"id"`
		Properties map[string]propertyValue `json:"properties"`
	} `json:"results"`
}

// QueryDatabase fetches matching rows and flattens them into sparse
// records.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, q Query) ([]Record, error) {
	body := map[string]any{"page_size": q.PageSize}
	if q.Filter != nil {
		body["filter"] = q.Filter
	}
	if len(q.Sorts) > 0 {
		body["sorts"] = q.Sorts
	}

	var res queryResponse
	if err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", body, &res); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(res.Results))
	for _, page := range res.Results {
		records = append(records, flattenPage(page.ID, page.Properties))
	}
	return records, nil
}

// CreatePage writes one row plus human-readable child blocks.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties map[string]any, children []Block) error {
	body := map[string]any{
		"parent":     map[string]any{"database_id": databaseID},
		"properties": properties,
	}
	if len(children) > 0 {
		body["children"] = children
	}
	return c.do(ctx, http.MethodPost, "/pages", body, nil)
}

// textBlockTypes are the child block types whose rich text counts as
// page content for excerpts.
var textBlockTypes = map[string]bool{
	"paragraph":          true,
	"heading_1":          true,
	"heading_2":          true,
	"heading_3":          true,
	"bulleted_list_item": true,
	"numbered_list_item": true,
	"to_do":              true,
}

type blockChildrenResponse struct {
	Results []map[string]json.RawMessage `json:"results"`
}

// PageExcerpt flattens the first maxBlocks child blocks of a page into
// a plain-text excerpt capped at maxChars. Title-only rows carry no
// signal for free-text notes; this is what makes them searchable.
func (c *Client) PageExcerpt(ctx context.Context, pageID string, maxBlocks, maxChars int) (string, error) {
	path := fmt.Sprintf("/blocks/%s/children?page_size=%d", pageID, maxBlocks)

	var res blockChildrenResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range res.Results {
		var blockType string
		if err := json.Unmarshal(block["type"], &blockType); err != nil {
			continue
		}
		if !textBlockTypes[blockType] {
			continue
		}

		var content struct {
			RichText []richText `json:"rich_text"`
		}
		if err := json.Unmarshal(block[blockType], &content); err != nil {
			continue
		}
		if len(content.RichText) == 0 {
			continue
		}

		sb.WriteString(content.RichText[0].PlainText)
		sb.WriteString("\n")
		if sb.Len() >= maxChars {
			break
		}
	}

	excerpt := sb.String()
	if len(excerpt) > maxChars {
		excerpt = excerpt[:maxChars]
	}
	return excerpt, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", notionVersion)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet := string(resBody)
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		return fmt.Errorf("notion: status %d on %s: %s", res.StatusCode, path, snippet)
	}

	if out != nil {
		return json.Unmarshal(resBody, out)
	}
	return nil
}
