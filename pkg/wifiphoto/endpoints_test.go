package wifiphoto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompressBodyIsLiterallyUnescaped(t *testing.T) {
	body := CompressBody(7, []int{0, 1, 2})
	// The server rejects percent-encoded bodies, so commas stay literal
	assert.Equal(t, "lib=7&sel=0,1,2", body)
}

func TestCompressBodyEmptySelection(t *testing.T) {
	assert.Equal(t, "lib=3&sel=", CompressBody(3, nil))
}

func TestProgressURLEmbedsCacheBuster(t *testing.T) {
	url := ProgressURL("http://phone:15555", "abc123", 424242)
	assert.Equal(t, "http://phone:15555/compressprogress424242?abc123", url)
}

func TestDownloadURL(t *testing.T) {
	url := DownloadURL("http://192.168.4.104:15555", "abc123")
	assert.Equal(t, "http://192.168.4.104:15555/zipdownload/abc123/images.zip", url)
}

func TestCompressURL(t *testing.T) {
	assert.Equal(t, "http://phone:15555/startcompressing", CompressURL("http://phone:15555"))
}
