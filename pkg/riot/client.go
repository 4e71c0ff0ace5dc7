package riot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"riotscrape/pkg/logger"
)

// Error types for Riot API operations
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a Riot API error
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("riot %s error (code %d): %s", e.Type, e.Code, e.Message)
}

// IsNotFound reports whether err is a Riot API "not found" response
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Type == ErrorTypeNotFound
}

// Client represents a Riot API client
type Client struct {
	httpClient *http.Client
	apiKey     string
	limiter    *rate.Limiter
	baseURL    func(region string) string
	logger     logger.Logger
}

// NewClient creates a new Riot API client. requestsPerSecond bounds the
// request rate; the development key budget is roughly 0.8 per second.
func NewClient(apiKey string, requestsPerSecond float64, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 0.8
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		baseURL:    BaseURLForRegion,
		logger:     log,
	}
}

// SetBaseURL overrides platform routing with a fixed base URL, used by tests
// to point the client at a local server.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = func(string) string { return baseURL }
}

// SummonerByName resolves a summoner's stable identifiers from a display name
func (c *Client) SummonerByName(region, name string) (*Summoner, error) {
	url := GetSummonerURL(c.baseURL(region), name)

	var summoner Summoner
	if err := c.getJSON(url, &summoner); err != nil {
		return nil, err
	}

	c.logger.DebugWithFields("resolved summoner", map[string]interface{}{
		"name":       name,
		"account_id": summoner.AccountID,
	})
	return &summoner, nil
}

// MatchlistByAccount lists match references created within [beginTime,
// endTime], both in epoch milliseconds. The API limits the range to one week.
func (c *Client) MatchlistByAccount(region, accountID string, beginTime, endTime int64) (*Matchlist, error) {
	url := GetMatchlistURL(c.baseURL(region), accountID, beginTime, endTime)

	var matchlist Matchlist
	if err := c.getJSON(url, &matchlist); err != nil {
		return nil, err
	}
	return &matchlist, nil
}

// MatchByID fetches the full match detail document
func (c *Client) MatchByID(region string, gameID int64) (Match, error) {
	url := GetMatchURL(c.baseURL(region), gameID)

	var match Match
	if err := c.getJSON(url, &match); err != nil {
		return nil, err
	}
	return match, nil
}

// TimelineByMatch fetches the timeline document for a match
func (c *Client) TimelineByMatch(region string, gameID int64) (Timeline, error) {
	url := GetTimelineURL(c.baseURL(region), gameID)

	var timeline Timeline
	if err := c.getJSON(url, &timeline); err != nil {
		return nil, err
	}
	if timeline == nil {
		timeline = Timeline{}
	}
	return timeline, nil
}

// getJSON performs a paced GET request and decodes the JSON response. Numeric
// values are decoded as json.Number so opaque documents survive re-encoding.
func (c *Client) getJSON(url string, target interface{}) error {
	if err := c.limiter.Wait(context.Background()); err != nil {
		return &Error{Type: ErrorTypeUnknown, Message: err.Error()}
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("X-Riot-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return &Error{Type: ErrorTypeNetwork, Message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return &Error{
			Type:    ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}
	return nil
}

// checkResponseStatus maps HTTP response statuses to API errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Type: ErrorTypeAuth, Message: "invalid or expired API key", Code: resp.StatusCode}
	case http.StatusNotFound:
		return &Error{Type: ErrorTypeNotFound, Message: "resource not found", Code: resp.StatusCode}
	case http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"url": resp.Request.URL.String(),
		})
		return &Error{Type: ErrorTypeRateLimit, Message: "rate limit exceeded", Code: resp.StatusCode}
	default:
		if resp.StatusCode >= 500 {
			return &Error{Type: ErrorTypeServerError, Message: "server error", Code: resp.StatusCode}
		}
		return &Error{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}
