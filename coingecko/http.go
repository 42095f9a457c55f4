package coingecko

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/coinwatch"
	"github.com/sirupsen/logrus"
)

// get performs an HTTP GET of path and unmarshals the JSON response into
// data.
func (c *Client) get(ctx context.Context, h *http.Client, path string, q url.Values, data any) error {
	op := "GET /" + path
	if err := c.limiter.Wait(ctx); err != nil {
		return &coinwatch.NetworkError{Op: op, Err: err}
	}
	// ids are comma separated, and read better unescaped.
	addr := c.baseURL + "/" + path + "?" + strings.ReplaceAll(q.Encode(), "%2C", ",")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return &coinwatch.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := h.Do(req)
	if err != nil {
		return &coinwatch.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &coinwatch.NetworkError{Op: op, Err: err}
	}
	c.log.WithFields(logrus.Fields{
		"host":   resp.Request.URL.Host,
		"path":   resp.Request.URL.Path,
		"status": resp.StatusCode,
	}).Debug("coingecko call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &coinwatch.UpstreamError{Op: op, Status: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	}
	if err := json.Unmarshal(body, data); err != nil {
		return &coinwatch.UpstreamError{Op: op, Message: "invalid response body", Err: err}
	}
	return nil
}

// errorPaths are where CoinGecko puts the reason of a failure, depending on
// the endpoint and the plan.
var errorPaths = []string{"$.status.error_message", "$.error", "$.message"}

// errorMessage extracts the reason of a failure from body, or returns
// fallback.
func errorMessage(body []byte, fallback string) string {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fallback
	}
	for _, path := range errorPaths {
		m, err := jsonpath.Get(path, v)
		if err != nil {
			continue
		}
		// jsonpath may return a list of one answer
		if list, ok := m.([]any); ok && len(list) > 0 {
			m = list[0]
		}
		if s, ok := m.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
