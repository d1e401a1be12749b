// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tavily implements the optional web search capability over the
// Tavily search API. The verifier treats the client as optional; errors
// here surface as plain errors and never panic past the boundary.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/analyst-engine/internal/httputil"
	"github.com/pdiddy/analyst-engine/pkg/types"
)

// apiURL is the Tavily search endpoint. Package-level var for test
// substitution.
var apiURL = "https://api.tavily.com/search"

// Client calls the Tavily search API.
type Client struct {
	APIKey     string
	HTTPClient *http.Client
	MaxRetries int
}

// searchRequest is the request body for the Tavily search API.
type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// searchResponse is the response body from the Tavily search API.
type searchResponse struct {
	Results []struct {
		Content string `json:"content"`
		URL     string `json:"url"`
	} `json:"results"`
}

// Search runs one web search and returns content/URL snippets. It satisfies
// the verifier's SearchClient interface.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]types.SearchSnippet, error) {
	reqBody := searchRequest{
		APIKey:     c.APIKey,
		Query:      query,
		MaxResults: maxResults,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("calling search API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search API returned %d: %s", resp.StatusCode, string(body))
	}

	var sResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sResp); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	snippets := make([]types.SearchSnippet, 0, len(sResp.Results))
	for _, r := range sResp.Results {
		snippets = append(snippets, types.SearchSnippet{Content: r.Content, URL: r.URL})
	}
	return snippets, nil
}
