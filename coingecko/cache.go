package coingecko

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// diskCache implements a simple disk cache for HTTP responses.
//
// Keys embed the current ttl bucket, so entries expire when the bucket
// changes. Only successful responses are cached.
type diskCache struct {
	base http.RoundTripper
	dir  string // os.TempDir() if empty
	ttl  time.Duration
	log  logrus.FieldLogger
	now  func() time.Time // time.Now if nil
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	bucket := now().Truncate(c.ttl).Unix()
	key := fmt.Sprintf("%d %s %s", bucket, req.Method, req.URL.String())
	key = fmt.Sprintf("coingecko-%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		c.log.WithField("path", req.URL.Path).Debug("cache hit")
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.log.WithError(err).Warn("cache write failed (ignored)")
	}
	return resp, nil
}

func (c *diskCache) file(key string) string {
	dir := c.dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, key)
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(c.file(key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk cache. The response body stays readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.file(key)), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.file(key), content, 0o644)
}
