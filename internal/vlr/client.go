package vlr

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"valorant-scout/internal/config"
	"valorant-scout/internal/constants"
	"valorant-scout/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// ErrInvalidRequest is returned before any network call when the team id or
// the date window cannot produce a request.
var ErrInvalidRequest = errors.New("invalid stats request")

// AllEvents is the event_id sentinel covering every event.
const AllEvents = "all"

// TransportError is a network failure (Status 0) or a non-200 response.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("stats request %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("stats request %s failed: status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	client    *fasthttp.Client
	now       func() time.Time
	logger    zerolog.Logger
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.StatsBaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.FetchTimeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     32,
			ReadTimeout:         cfg.FetchTimeout,
			WriteTimeout:        cfg.FetchTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
			MaxResponseBodySize: constants.MaxResponseBodyBytes,
		},
		now:    time.Now,
		logger: logger.With().Str("component", "vlr").Logger(),
	}
}

// StatsURL builds the team statistics URL for the window, resolved against
// the client's clock.
func (c *Client) StatsURL(teamID string, window domain.DateWindow) (string, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return "", fmt.Errorf("%w: empty team id", ErrInvalidRequest)
	}
	if err := window.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	start, end := window.Bounds(c.now())

	query := url.Values{}
	query.Set("event_id", AllEvents)
	query.Set("date_start", start)
	query.Set("date_end", end)

	return fmt.Sprintf("%s/team/stats/%s/?%s", c.baseURL, url.PathEscape(teamID), query.Encode()), nil
}

// Fetch issues exactly one GET for the team's statistics page and returns the
// body. Content is not inspected here.
func (c *Client) Fetch(ctx context.Context, teamID string, window domain.DateWindow) (string, error) {
	link, err := c.StatsURL(teamID, window)
	if err != nil {
		return "", err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(link)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.SetUserAgent(c.userAgent)

	start := time.Now()
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = start.Add(c.timeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Warn().Err(err).Str("url", link).Msg("stats request failed")
		return "", &TransportError{URL: link, Err: err}
	}

	status := resp.StatusCode()
	if status != fasthttp.StatusOK {
		c.logger.Warn().Int("status", status).Str("url", link).Msg("stats request returned non-success status")
		return "", &TransportError{URL: link, Status: status, Err: fmt.Errorf("unexpected status %d", status)}
	}

	body := string(resp.Body())
	c.logger.Debug().
		Str("url", link).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("stats page fetched")

	return body, nil
}

var teamLinkPattern = regexp.MustCompile(`/team/(?:stats/)?(\d+)(?:/|$|\?)`)

// TeamIDFromURL extracts the numeric team id from a stats-site team link such
// as https://www.vlr.gg/team/2593/fnatic. A bare numeric id is returned as is.
func TeamIDFromURL(link string) (string, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", false
	}
	if isDigits(link) {
		return link, true
	}
	m := teamLinkPattern.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
