package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	ihttp "github.com/influxdata/influxdb-client-go/v2/api/http"

	"github.com/nerrad567/gray-logic-sensor/internal/settings"
)

// contentType is sent on every request.
const contentType = "application/x-www-form-urlencoded"

// maxQueryResponse bounds how much of a query response is read.
const maxQueryResponse = 64 << 10

// OutcomeKind classifies a write.
type OutcomeKind int

const (
	// Success means the server answered 204 No Content.
	Success OutcomeKind = iota

	// Rejected means the server answered with any other status.
	Rejected

	// NetworkFailure means no status was received.
	NetworkFailure
)

// String returns the outcome name used in logs.
func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case Rejected:
		return "rejected"
	case NetworkFailure:
		return "network_failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the classified result of one write.
type Outcome struct {
	Kind OutcomeKind

	// StatusCode is set for Success and Rejected.
	StatusCode int

	// Err describes a Rejected or NetworkFailure outcome.
	Err error
}

// OK reports whether the write succeeded.
func (o Outcome) OK() bool {
	return o.Kind == Success
}

// Client writes points to one InfluxDB 1.x database.
//
// Requests go through the influxdb-client-go HTTP service, so transport
// timeouts and error decoding follow the official client.
type Client struct {
	svc  ihttp.Service
	conn settings.ConnectionConfig
}

// NewClient creates a client for conn. timeout bounds each request.
func NewClient(conn settings.ConnectionConfig, timeout time.Duration) *Client {
	opts := ihttp.DefaultOptions().SetHTTPRequestTimeout(uint(timeout / time.Second))

	// Authorization is set per request so that an empty token still
	// produces a "Bearer " header.
	svc := ihttp.NewService(conn.BaseURL(), "", opts)

	return &Client{svc: svc, conn: conn}
}

// authorize sets the headers shared by every request.
func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.conn.Token)
}

// Post writes one line-protocol point.
//
// Parameters:
//   - ctx: Context for cancellation
//   - line: A single encoded point
//
// Returns:
//   - Outcome: Success only for HTTP 204
func (c *Client) Post(ctx context.Context, line string) Outcome {
	ierr := c.svc.DoPostRequest(ctx, c.conn.WriteURL(), strings.NewReader(line), c.authorize,
		func(resp *http.Response) error {
			drain(resp)
			if resp.StatusCode != http.StatusNoContent {
				return &statusError{code: resp.StatusCode}
			}
			return nil
		})

	if ierr == nil {
		return Outcome{Kind: Success, StatusCode: http.StatusNoContent}
	}
	return classify(ierr)
}

// classify maps a service error onto an Outcome.
func classify(ierr *ihttp.Error) Outcome {
	var se *statusError
	switch {
	case errors.As(ierr.Err, &se):
		return Outcome{Kind: Rejected, StatusCode: se.code, Err: fmt.Errorf("%w: %w", ErrRejected, se)}
	case ierr.StatusCode != 0:
		return Outcome{Kind: Rejected, StatusCode: ierr.StatusCode, Err: fmt.Errorf("%w: %w", ErrRejected, ierr)}
	default:
		return Outcome{Kind: NetworkFailure, Err: fmt.Errorf("%w: %w", ErrNetwork, ierr)}
	}
}

// drain discards and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxQueryResponse)) //nolint:errcheck // Best effort
	resp.Body.Close()                                                //nolint:errcheck // Best effort
}

// showDatabasesResponse is the subset of the /query JSON we read.
type showDatabasesResponse struct {
	Results []struct {
		Error  string `json:"error"`
		Series []struct {
			Values [][]any `json:"values"`
		} `json:"series"`
	} `json:"results"`
}

// EnsureDatabase creates the configured database if the server does not have it.
//
// It issues SHOW DATABASES and, only when the name is absent, CREATE DATABASE.
// This needs admin rights and is meant for servers without authentication.
//
// Returns:
//   - bool: true if the database was created
//   - error: Wrapping ErrQueryFailed
func (c *Client) EnsureDatabase(ctx context.Context) (bool, error) {
	var names []string
	err := c.query(ctx, "SHOW DATABASES", func(body io.Reader) error {
		var r showDatabasesResponse
		if err := json.NewDecoder(io.LimitReader(body, maxQueryResponse)).Decode(&r); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		for _, res := range r.Results {
			if res.Error != "" {
				return errors.New(res.Error)
			}
			for _, s := range res.Series {
				for _, row := range s.Values {
					if len(row) > 0 {
						if name, ok := row[0].(string); ok {
							names = append(names, name)
						}
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	for _, n := range names {
		if n == c.conn.Database {
			return false, nil
		}
	}

	stmt := "CREATE DATABASE " + quoteIdent(c.conn.Database)
	if err := c.query(ctx, stmt, nil); err != nil {
		return false, err
	}
	return true, nil
}

// query POSTs q to the query endpoint and hands the body to read, if set.
func (c *Client) query(ctx context.Context, q string, read func(io.Reader) error) error {
	body := url.Values{"q": {q}}.Encode()
	ierr := c.svc.DoPostRequest(ctx, c.conn.QueryURL(), strings.NewReader(body), c.authorize,
		func(resp *http.Response) error {
			defer drain(resp)
			if read == nil {
				return nil
			}
			return read(resp.Body)
		})
	if ierr != nil {
		return fmt.Errorf("%w: %s: %w", ErrQueryFailed, q, ierr)
	}
	return nil
}

// quoteIdent renders name as a double-quoted InfluxQL identifier.
// Only backslash and double quote are escaped; other bytes pass through.
func quoteIdent(name string) string {
	name = strings.ReplaceAll(name, `\`, `\\`)
	name = strings.ReplaceAll(name, `"`, `\"`)
	return `"` + name + `"`
}
