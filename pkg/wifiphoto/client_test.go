package wifiphoto

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wifiphoto/pkg/errors"
	"wifiphoto/pkg/logger"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(server.URL, server.URL, 5*time.Second, logger.NewNop())
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsInvalidURL(t *testing.T) {
	tests := []string{
		"",
		"not a url",
		"192.168.4.104:15555", // no scheme
		"ftp://host/path",
	}

	for _, raw := range tests {
		_, err := NewClient(raw, "http://192.168.4.104:15555", time.Second, logger.NewNop())
		require.Error(t, err, "URL %q should be rejected", raw)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidURL), "URL %q", raw)
	}
}

func TestNewClientStripsTrailingSlash(t *testing.T) {
	client, err := NewClient("http://phone:15555/", "http://phone:15555", time.Second, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "http://phone:15555", client.BaseURL())
}

func TestResolveAlbum(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, `<a href="/3/view">Camera Roll</a><a href="/7/index">Recents</a>`)
	}))
	defer server.Close()

	album, err := newTestClient(t, server).ResolveAlbum("Recents")
	require.NoError(t, err)
	assert.Equal(t, "Recents", album.Name)
	assert.Equal(t, "/7/index", album.Path)
	assert.Equal(t, 7, album.ID)
}

func TestResolveAlbumNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<a href="/3/view">Camera Roll</a>`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).ResolveAlbum("Recents")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAlbumNotFound))
}

func TestHighestIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/7/index", r.URL.Path)
		io.WriteString(w, `<div># 450 photos</div>`)
	}))
	defer server.Close()

	index, err := newTestClient(t, server).HighestIndex(&Album{Name: "Recents", Path: "/7/index", ID: 7})
	require.NoError(t, err)
	assert.Equal(t, 450, index)
}

func TestStartCompressionSendsLiteralBody(t *testing.T) {
	var gotBody string
	var gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, CompressEndpoint, r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(body)
		gotContentType = r.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"selid": "code42", "ready": false}`)
	}))
	defer server.Close()

	job, err := newTestClient(t, server).StartCompression(7, []int{0, 1, 2})
	require.NoError(t, err)

	assert.Equal(t, "lib=7&sel=0,1,2", gotBody, "body must not be percent-encoded")
	assert.Equal(t, CompressContentType, gotContentType)
	assert.Equal(t, "code42", job.DownloadCode)
	assert.False(t, job.Ready)
}

func TestCompressionReadyUsesFreshCacheBuster(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path+"?"+r.URL.RawQuery)
		io.WriteString(w, `{"readyForDownload": true}`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	busts := []int{111, 222}
	client.cacheBust = func() int {
		bust := busts[0]
		busts = busts[1:]
		return bust
	}

	ready, err := client.CompressionReady("code42")
	require.NoError(t, err)
	assert.True(t, ready)

	ready, err = client.CompressionReady("code42")
	require.NoError(t, err)
	assert.True(t, ready)

	require.Len(t, paths, 2)
	assert.Equal(t, "/compressprogress111?code42", paths[0])
	assert.Equal(t, "/compressprogress222?code42", paths[1])
}

func TestCompressionReadyNotYet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"readyForDownload": false}`)
	}))
	defer server.Close()

	ready, err := newTestClient(t, server).CompressionReady("code42")
	require.NoError(t, err)
	assert.False(t, ready)
}

func TestDownloadArchive(t *testing.T) {
	payload := []byte("zip bytes here")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/zipdownload/code42/images.zip", r.URL.Path)
		w.Write(payload)
	}))
	defer server.Close()

	data, err := newTestClient(t, server).DownloadArchive("code42")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestHTTPStatusErrorsCarryCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).ResolveAlbum("Recents")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeHTTPStatus))
	assert.Contains(t, err.Error(), "503")
}

func TestNetworkErrorOnClosedServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, server)
	server.Close()

	_, err := client.ResolveAlbum("Recents")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
}

func TestMalformedJSONIsParsingError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>definitely not json</html>`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).CompressionReady("code42")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParsing))
}

func TestStartCompressionMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"selid": `)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).StartCompression(1, []int{0})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParsing))
}

func TestClientSendsCustomHeaders(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, `<a href="/1/view">A</a>`)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	client.SetHeader("User-Agent", "wifiphoto-test")

	_, err := client.ResolveAlbum("A")
	require.NoError(t, err)
	assert.Equal(t, "wifiphoto-test", gotUA)
}

func TestClientString(t *testing.T) {
	client, err := NewClient("http://phone:15555", "http://phone:15555", time.Second, logger.NewNop())
	require.NoError(t, err)
	assert.True(t, strings.Contains(client.String(), "http://phone:15555"))
}
