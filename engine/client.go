package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m4xw311/shortbot/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

const (
	apiVersion   = "v1beta1"
	cloudScope   = "https://www.googleapis.com/auth/cloud-platform"
	pollInterval = 2 * time.Second
)

// Client talks to the agent engine platform over its regional REST endpoint.
type Client struct {
	hc       *http.Client
	baseURL  string
	project  string
	location string
}

// NewClient builds an authenticated client for the given project and
// location. Extra options (custom endpoint, disabled auth) are appended, so
// tests can point the client at a local server.
func NewClient(ctx context.Context, project, location string, opts ...option.ClientOption) (*Client, error) {
	endpoint := fmt.Sprintf("https://%s-aiplatform.googleapis.com", location)
	all := append([]option.ClientOption{
		option.WithEndpoint(endpoint),
		option.WithScopes(cloudScope),
	}, opts...)

	hc, resolved, err := htransport.NewClient(ctx, all...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create platform HTTP client")
	}
	if resolved == "" {
		resolved = endpoint
	}
	return &Client{
		hc:       hc,
		baseURL:  strings.TrimSuffix(resolved, "/") + "/" + apiVersion,
		project:  project,
		location: location,
	}, nil
}

func (c *Client) parent() string {
	return fmt.Sprintf("projects/%s/locations/%s", c.project, c.location)
}

// CreateEngine submits a new engine and blocks until the long-running
// creation operation completes, returning the final resource.
func (c *Client) CreateEngine(ctx context.Context, e *Engine) (*Engine, error) {
	var op operation
	path := fmt.Sprintf("%s/%s/reasoningEngines", c.baseURL, c.parent())
	if err := c.do(ctx, http.MethodPost, path, e, &op); err != nil {
		return nil, err
	}
	done, err := c.waitOperation(ctx, &op)
	if err != nil {
		return nil, err
	}
	var created Engine
	if len(done.Response) > 0 {
		if err := json.Unmarshal(done.Response, &created); err != nil {
			return nil, errors.Wrapf(err, "failed to decode created engine")
		}
	}
	return &created, nil
}

// GetEngine fetches one engine by fully qualified resource name.
func (c *Client) GetEngine(ctx context.Context, name string) (*Engine, error) {
	var e Engine
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/"+name, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEngines enumerates every engine in the project and location, following
// pagination until the platform is exhausted.
func (c *Client) ListEngines(ctx context.Context) ([]*Engine, error) {
	var engines []*Engine
	pageToken := ""
	for {
		path := fmt.Sprintf("%s/%s/reasoningEngines", c.baseURL, c.parent())
		if pageToken != "" {
			path += "?pageToken=" + url.QueryEscape(pageToken)
		}
		var page struct {
			ReasoningEngines []*Engine `json:"reasoningEngines"`
			NextPageToken    string    `json:"nextPageToken"`
		}
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		engines = append(engines, page.ReasoningEngines...)
		if page.NextPageToken == "" {
			return engines, nil
		}
		pageToken = page.NextPageToken
	}
}

// DeleteEngine removes an engine. With force set, the platform also deletes
// child resources such as sessions; without it, such an engine is rejected
// with a failed-precondition error.
func (c *Client) DeleteEngine(ctx context.Context, name string, force bool) error {
	path := fmt.Sprintf("%s/%s?force=%t", c.baseURL, name, force)
	var op operation
	if err := c.do(ctx, http.MethodDelete, path, nil, &op); err != nil {
		return err
	}
	_, err := c.waitOperation(ctx, &op)
	return err
}

// Query invokes a class method on the deployed agent app (e.g.
// "create_session", "list_sessions") and returns its output object.
func (c *Client) Query(ctx context.Context, name, method string, input map[string]interface{}) (map[string]interface{}, error) {
	body := map[string]interface{}{
		"classMethod": method,
		"input":       input,
	}
	var resp struct {
		Output map[string]interface{} `json:"output"`
	}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/"+name+":query", body, &resp); err != nil {
		return nil, err
	}
	return resp.Output, nil
}

// StreamQuery invokes a streaming class method ("stream_query") and returns
// the chunk stream. The caller owns the stream and must close it.
func (c *Client) StreamQuery(ctx context.Context, name, method string, input map[string]interface{}) (*Stream, error) {
	body := map[string]interface{}{
		"classMethod": method,
		"input":       input,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode stream query")
	}

	u := c.baseURL + "/" + name + ":streamQuery"
	log.Debug().Str("url", u).Str("method", method).Msg("platform stream request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build stream request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "stream request failed")
	}
	if err := googleapi.CheckResponse(resp); err != nil {
		resp.Body.Close()
		return nil, errors.Wrapf(err, "platform rejected stream query")
	}
	return NewStream(resp.Body), nil
}

// do performs one JSON request/response round trip. Non-2xx responses come
// back as wrapped *googleapi.Error values.
func (c *Client) do(ctx context.Context, httpMethod, u string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "failed to encode request body")
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	log.Debug().Str("url", u).Str("http_method", httpMethod).Msg("platform request")

	req, err := http.NewRequestWithContext(ctx, httpMethod, u, reader)
	if err != nil {
		return errors.Wrapf(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request failed")
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return errors.Wrapf(err, "platform call failed")
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode response")
	}
	return nil
}

// waitOperation polls a long-running operation until it is done. There is no
// timeout beyond the caller's context.
func (c *Client) waitOperation(ctx context.Context, op *operation) (*operation, error) {
	for {
		if op.Done {
			if op.Error != nil {
				return nil, errors.New("operation %s failed: %s (code %d)", op.Name, op.Error.Message, op.Error.Code)
			}
			return op, nil
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "waiting for operation %s", op.Name)
		case <-time.After(pollInterval):
		}
		var next operation
		if err := c.do(ctx, http.MethodGet, c.baseURL+"/"+op.Name, nil, &next); err != nil {
			return nil, err
		}
		*op = next
	}
}
