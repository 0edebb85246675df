package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mirrorcat/gameversions/internal/common"
)

const (
	versionsPath     = "/api/game/versions"
	versionTypesPath = "/api/game/version-types"
)

var (
	// ErrUnavailable marks transport-level failures: connection errors,
	// timeouts and non-2xx responses.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrDecode marks a response body that does not parse as the
	// expected shape.
	ErrDecode = errors.New("upstream response malformed")
)

// Config controls how the client reaches the upstream catalog API.
type Config struct {
	BaseURL string
	Token   string

	// Timeout bounds each request. Zero disables the timeout.
	Timeout time.Duration
}

// Client fetches the game-version catalog from the upstream HTTP API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a client from the provided configuration.
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Fetch retrieves both catalog collections. The two endpoint requests run
// concurrently; either failure aborts the fetch. No retries are performed
// here, retry policy belongs to the caller.
func (c *Client) Fetch(ctx context.Context) ([]Version, []VersionType, error) {
	logger := common.Logger()
	logger.Info("catalog: fetching upstream data", "base_url", c.cfg.BaseURL)

	var (
		versions []Version
		types    []VersionType
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.getJSON(ctx, versionsPath, &versions)
	})
	g.Go(func() error {
		return c.getJSON(ctx, versionTypesPath, &types)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	logger.Info("catalog: upstream fetch complete", "versions", len(versions), "version_types", len(types))
	return versions, types, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: build request for %s: %v", ErrUnavailable, path, err)
	}
	req.Header.Set("X-Api-Token", c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %s", ErrUnavailable, path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return nil
}
