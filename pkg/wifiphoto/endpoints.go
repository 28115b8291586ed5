package wifiphoto

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// CompressEndpoint starts a server-side compression job
	CompressEndpoint = "/startcompressing"

	// ProgressEndpoint prefix for readiness polls; the vendor app appends a
	// random integer to it
	ProgressEndpoint = "/compressprogress"

	// DownloadEndpoint serves the finished archive for a download code
	DownloadEndpoint = "/zipdownload"

	// ArchiveFileName is the fixed name the server gives exported archives
	ArchiveFileName = "images.zip"

	// CompressContentType is the only body encoding the server accepts
	CompressContentType = "application/x-www-form-urlencoded; charset=UTF-8"

	// ProgressCacheBustMax bounds the random discriminator embedded in
	// progress URLs. The server keys progress checks by download code; the
	// number only defeats response caching.
	ProgressCacheBustMax = 10_000_000
)

// CompressURL constructs the URL that starts a compression job
func CompressURL(base string) string {
	return base + CompressEndpoint
}

// ProgressURL constructs a readiness-poll URL for a download code. The
// cache-busting integer is embedded in the path and the download code rides
// in the raw query string, matching what the vendor app's own UI sends.
func ProgressURL(base string, code string, bust int) string {
	return fmt.Sprintf("%s%s%d?%s", base, ProgressEndpoint, bust, code)
}

// DownloadURL constructs the archive download URL for a download code
func DownloadURL(base string, code string) string {
	return fmt.Sprintf("%s%s/%s/%s", base, DownloadEndpoint, code, ArchiveFileName)
}

// CompressBody builds the form body for a compression request. The server
// rejects percent-encoded bodies, so field values are joined literally
// instead of going through url.Values.
func CompressBody(albumID int, selection []int) string {
	indices := make([]string, len(selection))
	for i, idx := range selection {
		indices[i] = strconv.Itoa(idx)
	}
	return fmt.Sprintf("lib=%d&sel=%s", albumID, strings.Join(indices, ","))
}
