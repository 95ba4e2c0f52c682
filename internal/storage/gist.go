// GitHub Gist backed implementation of [Store]
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spr/internal/shared"
	"github.com/go-resty/resty/v2"
)

const (
	githubAPIBase = "https://api.github.com"

	gistTimeout  = 10 * time.Second
	gistMaxConns = 5
)

// GistConfig configures a [GistStore].
type GistConfig struct {
	GistID   string
	Token    string
	Filename string

	// Timeout bounds every gist API call. Defaults to 10s.
	Timeout time.Duration

	// APIBase overrides the GitHub API base URL, for tests and GitHub
	// Enterprise deployments.
	APIBase string
}

// GistStore persists the credential record as one file inside a GitHub Gist.
//
// Loads read the whole gist and extract the configured file; saves PATCH the
// full file content. The gist API applies writes atomically per request, which
// gives the store its last-writer-wins behavior.
type GistStore struct {
	client   *resty.Client
	gistID   string
	filename string
	logger   *log.Logger
}

type gistFile struct {
	Content string `json:"content"`
}

type gistDocument struct {
	Files map[string]gistFile `json:"files"`
}

// NewGistStore creates a gist-backed store authenticated with a GitHub
// personal access token.
func NewGistStore(cfg GistConfig, logger *log.Logger) (*GistStore, error) {
	if cfg.GistID == "" || cfg.Token == "" || cfg.Filename == "" {
		return nil, fmt.Errorf("%w: gist_id, gist_token, and gist_filename are required", shared.ErrInvalidConfig)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = gistTimeout
	}
	if cfg.APIBase == "" {
		cfg.APIBase = githubAPIBase
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	client := resty.NewWithClient(&http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxConnsPerHost:     gistMaxConns,
			MaxIdleConnsPerHost: gistMaxConns,
		},
	}).
		SetBaseURL(cfg.APIBase).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("Authorization", "token "+cfg.Token)

	return &GistStore{
		client:   client,
		gistID:   cfg.GistID,
		filename: cfg.Filename,
		logger:   logger,
	}, nil
}

// Load fetches the gist and deserializes the configured file's content.
func (s *GistStore) Load(ctx context.Context) (*Record, error) {
	var doc gistDocument
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&doc).
		Get("/gists/" + s.gistID)
	if err != nil {
		return nil, fmt.Errorf("%w: gist fetch: %v", shared.ErrStorageFailed, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: gist %s", ErrNotFound, s.gistID)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: gist fetch returned status %d", shared.ErrStorageFailed, resp.StatusCode())
	}

	file, ok := doc.Files[s.filename]
	if !ok || file.Content == "" {
		return nil, fmt.Errorf("%w: file %s", ErrNotFound, s.filename)
	}

	var rec Record
	if err := json.Unmarshal([]byte(file.Content), &rec); err != nil {
		return nil, fmt.Errorf("%w: malformed record: %v", shared.ErrStorageFailed, err)
	}

	return &rec, nil
}

// Save serializes rec and PATCHes it over the configured gist file.
func (s *GistStore) Save(ctx context.Context, rec *Record) error {
	content, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode record: %v", shared.ErrStorageFailed, err)
	}

	body := map[string]any{
		"files": map[string]any{
			s.filename: map[string]string{"content": string(content)},
		},
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Patch("/gists/" + s.gistID)
	if err != nil {
		return fmt.Errorf("%w: gist update: %v", shared.ErrStorageFailed, err)
	}

	s.logger.Debug("gist save", "status", resp.StatusCode())

	if !resp.IsSuccess() {
		return fmt.Errorf("%w: gist update returned status %d", shared.ErrStorageFailed, resp.StatusCode())
	}

	return nil
}
