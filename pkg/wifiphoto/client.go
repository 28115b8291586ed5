package wifiphoto

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"wifiphoto/pkg/errors"
	"wifiphoto/pkg/logger"
)

// Client talks to a WiFi Photo Transfer server. The base URL serves the HTML
// UI and the compression protocol; finished archives are fetched from a
// separate download base (the vendor app pins that endpoint to a fixed LAN
// address regardless of how the UI is reached).
type Client struct {
	httpClient   *http.Client
	headers      map[string]string
	baseURL      string
	downloadBase string
	logger       logger.Logger

	// cacheBust generates the random discriminator for progress URLs,
	// injectable in tests
	cacheBust func() int
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL, downloadBase string, timeout time.Duration, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	base, err := normalizeURL(baseURL)
	if err != nil {
		return nil, err
	}
	download, err := normalizeURL(downloadBase)
	if err != nil {
		return nil, err
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers:      map[string]string{},
		baseURL:      base,
		downloadBase: download,
		logger:       log,
		cacheBust: func() int {
			return rand.Intn(ProgressCacheBustMax)
		},
	}, nil
}

// normalizeURL validates a base URL and strips any trailing slash
func normalizeURL(raw string) (string, error) {
	u, err := neturl.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", errors.New(errors.ErrorTypeInvalidURL, "invalid URL provided: %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New(errors.ErrorTypeInvalidURL, "unsupported URL scheme %q in %q", u.Scheme, raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// BaseURL returns the normalized server base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.New(errors.ErrorTypeNetwork,
			"could not connect to %s; check the connection and try again", req.URL.String())
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// get performs a GET and fails on any non-2xx status
func (c *Client) get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeInvalidURL, "failed to create request: %v", err)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}

	if err := checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// getJSON performs a GET request and decodes the JSON response
func (c *Client) getJSON(url string, target interface{}) error {
	resp, err := c.get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.New(errors.ErrorTypeNetwork, "failed to read response body: %v", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return errors.New(errors.ErrorTypeParsing, "failed to parse JSON: %v", err)
	}

	return nil
}

// checkResponseStatus maps non-2xx responses to typed errors
func checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return errors.FromStatus(resp.StatusCode, http.StatusText(resp.StatusCode))
}

// ResolveAlbum fetches the album listing page and resolves an album name to
// its server path and numeric id
func (c *Client) ResolveAlbum(name string) (*Album, error) {
	c.logger.DebugWithFields("resolving album", map[string]interface{}{
		"album": name,
	})

	resp, err := c.get(c.baseURL + "/")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	path, err := FindAlbumPath(resp.Body, name)
	if err != nil {
		return nil, err
	}

	id, err := ParseAlbumID(path)
	if err != nil {
		return nil, err
	}

	c.logger.InfoWithFields("album resolved", map[string]interface{}{
		"album":    name,
		"path":     path,
		"album_id": id,
	})

	return &Album{Name: name, Path: path, ID: id}, nil
}

// HighestIndex fetches an album's detail page and returns its highest
// 1-based file index
func (c *Client) HighestIndex(album *Album) (int, error) {
	resp, err := c.get(c.baseURL + album.Path)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	index, err := HighestFileIndex(resp.Body)
	if err != nil {
		return 0, err
	}

	c.logger.InfoWithFields("highest file index resolved", map[string]interface{}{
		"album":         album.Name,
		"highest_index": index,
	})

	return index, nil
}

// StartCompression asks the server to compress the given zero-based file
// selection from an album. The body is written literally because the server
// rejects percent-encoded form data.
func (c *Client) StartCompression(albumID int, selection []int) (*CompressionJob, error) {
	body := CompressBody(albumID, selection)

	req, err := http.NewRequest(http.MethodPost, CompressURL(c.baseURL), strings.NewReader(body))
	if err != nil {
		return nil, errors.New(errors.ErrorTypeInvalidURL, "failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", CompressContentType)

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResponseStatus(resp); err != nil {
		return nil, err
	}

	var started CompressStartResponse
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeNetwork, "failed to read response body: %v", err)
	}
	if err := json.Unmarshal(data, &started); err != nil {
		return nil, errors.New(errors.ErrorTypeParsing, "failed to parse compression response: %v", err)
	}

	c.logger.DebugWithFields("compression job started", map[string]interface{}{
		"album_id":      albumID,
		"selection_len": len(selection),
		"download_code": started.DownloadCode,
		"ready":         started.Ready,
	})

	return &CompressionJob{
		DownloadCode: started.DownloadCode,
		Ready:        started.Ready,
	}, nil
}

// CompressionReady polls whether a compression job's archive can be
// downloaded yet. Each call uses a fresh random discriminator so cached
// progress responses are never reused.
func (c *Client) CompressionReady(code string) (bool, error) {
	url := ProgressURL(c.baseURL, code, c.cacheBust())

	var progress CompressProgressResponse
	if err := c.getJSON(url, &progress); err != nil {
		return false, err
	}
	return progress.ReadyForDownload, nil
}

// DownloadArchive fetches the finished archive bytes for a download code
// from the download base URL
func (c *Client) DownloadArchive(code string) ([]byte, error) {
	url := DownloadURL(c.downloadBase, code)

	if !strings.HasPrefix(url, c.baseURL) {
		c.logger.DebugWithFields("archive download host differs from server base", map[string]interface{}{
			"download_url": url,
			"base_url":     c.baseURL,
		})
	}

	resp, err := c.get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeNetwork, "failed to download archive: %v", err)
	}

	c.logger.DebugWithFields("archive downloaded", map[string]interface{}{
		"download_code": code,
		"size":          len(data),
	})

	return data, nil
}

// String implements fmt.Stringer for debug logs
func (c *Client) String() string {
	return fmt.Sprintf("wifiphoto.Client(%s)", c.baseURL)
}
