// Package wakatime delivers heartbeats to a WakaTime-compatible API.
package wakatime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/klauspost/compress/gzhttp"

	"github.com/tobycm/easyeda-wakatime/internal/credentials"
	"github.com/tobycm/easyeda-wakatime/internal/logic"
)

// API paths relative to the configured base URL.
const (
	BulkPath  = "/users/current/heartbeats.bulk"
	TodayPath = "/users/current/statusbar/today"
)

// Kind classifies a delivery outcome.
type Kind int

const (
	Success Kind = iota
	HTTPError
	TransportError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case HTTPError:
		return "http_error"
	case TransportError:
		return "transport_error"
	}
	return "unknown"
}

// Outcome is the result of one delivery attempt. Status and Body are set for
// Success and HTTPError; Err is set for TransportError.
type Outcome struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

// OK reports whether the backend accepted the batch.
func (o Outcome) OK() bool { return o.Kind == Success }

func (o Outcome) String() string {
	switch o.Kind {
	case Success:
		return fmt.Sprintf("sent (%d)", o.Status)
	case HTTPError:
		return fmt.Sprintf("http %d: %s", o.Status, o.Body)
	default:
		return fmt.Sprintf("transport: %v", o.Err)
	}
}

// Sender performs one delivery attempt per call.
type Sender interface {
	Send(ctx context.Context, heartbeats []logic.Heartbeat, creds credentials.Credentials) Outcome
}

// Client talks to the API over HTTP.
type Client struct {
	http *resty.Client
}

// NewClient returns a Client whose transport transparently decodes
// compressed responses.
func NewClient() *Client {
	hc := &http.Client{Transport: gzhttp.Transport(http.DefaultTransport)}
	r := resty.NewWithClient(hc).
		SetHeader("Accept", "application/json")
	return &Client{http: r}
}

// Send posts the batch to the bulk heartbeat endpoint. It never panics;
// every failure is returned as an Outcome.
func (c *Client) Send(ctx context.Context, heartbeats []logic.Heartbeat, creds credentials.Credentials) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Kind: TransportError, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(creds.APIKey).
		SetBody(heartbeats).
		Post(endpoint(creds, BulkPath))
	if err != nil {
		return Outcome{Kind: TransportError, Err: err}
	}

	out = Outcome{Status: resp.StatusCode(), Body: string(resp.Body())}
	if resp.IsSuccess() {
		out.Kind = Success
	} else {
		out.Kind = HTTPError
	}
	return out
}

// todayResponse is the subset of the status bar payload we display.
type todayResponse struct {
	Data struct {
		Categories []struct {
			Name string `json:"name"`
			Text string `json:"text"`
		} `json:"categories"`
	} `json:"data"`
}

// Today fetches today's totals and formats them for display.
func (c *Client) Today(ctx context.Context, creds credentials.Credentials) (string, error) {
	var body todayResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(creds.APIKey).
		SetResult(&body).
		Get(endpoint(creds, TodayPath))
	if err != nil {
		return "", fmt.Errorf("fetching today's stats: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("fetching today's stats: %w", &StatusError{Status: resp.StatusCode(), Body: string(resp.Body())})
	}

	parts := make([]string, 0, len(body.Data.Categories))
	for _, cat := range body.Data.Categories {
		parts = append(parts, fmt.Sprintf("%s (%s)", cat.Text, cat.Name))
	}
	return "Today's stats: " + strings.Join(parts, ", "), nil
}

// StatusError is a non-2xx reply outside the heartbeat path.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Body)
}

// IsStatus reports whether err carries a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == code
}

func endpoint(creds credentials.Credentials, path string) string {
	return strings.TrimRight(creds.APIURL, "/") + path
}
