package corpus

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/gigmatch/internal/utils"
)

const (
	defaultJobsPath = "/jobs"
	defaultPerPage  = 100
	defaultMaxPages = 1000
	contentEncoding = "gzip"
)

// ItemResponse is one page of the job listing API.
type ItemResponse struct {
	Items   []map[string]any `json:"items"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
	Total   int              `json:"total"`
	HasMore bool             `json:"has_more"`
}

// HTTP reads postings from a paginated listing endpoint.
type HTTP struct {
	BaseURL   string
	Path      string
	Token     string
	UserAgent string
	PerPage   int
	// PageDelay is waited between page requests.
	PageDelay time.Duration
	// MaxPages bounds the crawl in case the server never reports the end.
	MaxPages int

	HTTPClient *http.Client
	Logger     *zap.Logger
}

func (s *HTTP) Load(ctx context.Context) (*Table, error) {
	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	path := s.Path
	if path == "" {
		path = defaultJobsPath
	}
	perPage := s.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	maxPages := s.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	endpoint := strings.TrimRight(s.BaseURL, "/") + path

	var items []map[string]any
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(perPage))

		response, err := s.getPage(ctx, client, endpoint, q)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		items = append(items, response.Items...)
		logger.Debug("got postings page",
			zap.Int("page", page),
			zap.Int("items", len(response.Items)),
			zap.Int("total", response.Total),
		)

		if !response.HasMore || len(response.Items) == 0 {
			break
		}
		if page >= maxPages {
			logger.Warn("stopping pagination", zap.String("reason", "max pages reached"), zap.Int("max_pages", maxPages))
			break
		}

		if err := utils.WaitFor(ctx, s.PageDelay); err != nil {
			return nil, err
		}
	}

	return itemsToTable(items), nil
}

func (s *HTTP) getPage(ctx context.Context, client *http.Client, endpoint string, q url.Values) (*ItemResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", contentEncoding)
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	var response ItemResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, err
	}
	return &response, nil
}

func itemsToTable(items []map[string]any) *Table {
	table := &Table{Rows: items}
	seen := make(map[string]struct{})
	for _, item := range items {
		keys := make([]string, 0, len(item))
		for key := range item {
			if _, ok := seen[key]; !ok {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			seen[key] = struct{}{}
			table.Columns = append(table.Columns, key)
		}
	}
	return table
}
