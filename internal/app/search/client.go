// Package search queries the full-text content index. The wire shape is the
// OpenSearch _search API: a multi_match query with automatic fuzziness over
// the content and commentary fields, capped by relevance rank.
package search

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	svcerrors "github.com/berea-labs/study_layer/internal/errors"
	"github.com/berea-labs/study_layer/internal/httputil"
)

// Index is the retrieval contract the context aggregator depends on. Results
// come back most-relevant-first; ranking is the index's concern.
type Index interface {
	Search(ctx context.Context, query string, fields []string, limit int) ([]string, error)
}

// Client implements Index against an OpenSearch-compatible endpoint.
type Client struct {
	http  *httputil.Client
	index string
}

var _ Index = (*Client)(nil)

// Config configures the search client.
type Config struct {
	Endpoint string
	Index    string
	APIKey   string
	Timeout  time.Duration
}

// NewClient creates a search client.
func NewClient(cfg Config) *Client {
	return &Client{
		http: httputil.New(httputil.Config{
			BaseURL:    cfg.Endpoint,
			APIKey:     cfg.APIKey,
			Timeout:    cfg.Timeout,
			MaxRetries: 1,
		}),
		index: cfg.Index,
	}
}

type multiMatch struct {
	Query     string   `json:"query"`
	Fields    []string `json:"fields"`
	Fuzziness string   `json:"fuzziness"`
}

type searchRequest struct {
	Query struct {
		MultiMatch multiMatch `json:"multi_match"`
	} `json:"query"`
	Size int `json:"size"`
}

// Search runs a fuzzy multi-field query and returns the content of the top
// hits in relevance order.
func (c *Client) Search(ctx context.Context, query string, fields []string, limit int) ([]string, error) {
	var req searchRequest
	req.Query.MultiMatch = multiMatch{Query: query, Fields: fields, Fuzziness: "AUTO"}
	req.Size = limit

	resp, err := c.http.Do(ctx, http.MethodPost, "/"+url.PathEscape(c.index)+"/_search", req)
	if err != nil {
		return nil, svcerrors.ProviderUnavailable("search", err)
	}
	body, err := httputil.ReadBody(resp, 8<<20)
	if err != nil {
		return nil, svcerrors.ProviderUnavailable("search", err)
	}

	var results []string
	gjson.GetBytes(body, "hits.hits").ForEach(func(_, hit gjson.Result) bool {
		if content := hit.Get("_source.content"); content.Exists() {
			results = append(results, content.String())
		}
		return true
	})
	return results, nil
}
