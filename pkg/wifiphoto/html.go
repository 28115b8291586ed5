package wifiphoto

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"wifiphoto/pkg/errors"
)

var (
	fileIndexPattern = regexp.MustCompile(`^# (\d+)`)
	albumIDPattern   = regexp.MustCompile(`^/(\d+)/`)
)

// FindAlbumPath scans an album-listing page for the first anchor whose
// trimmed visible text equals name (case sensitive, document order) and
// returns its href.
func FindAlbumPath(r io.Reader, name string) (string, error) {
	z := html.NewTokenizer(r)
	inAnchor := false
	href := ""

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return "", errors.New(errors.ErrorTypeAlbumNotFound,
					"could not find album %q; make sure it is spelled correctly and remember it is case sensitive", name)
			}
			return "", errors.New(errors.ErrorTypeParsing, "malformed album listing: %v", z.Err())

		case html.StartTagToken:
			tok := z.Token()
			if tok.Data == "a" {
				inAnchor = true
				href = ""
				for _, attr := range tok.Attr {
					if attr.Key == "href" {
						href = attr.Val
						break
					}
				}
			}

		case html.TextToken:
			if inAnchor && strings.TrimSpace(string(z.Text())) == name {
				return href, nil
			}

		case html.EndTagToken:
			if z.Token().Data == "a" {
				inAnchor = false
			}
		}
	}
}

// HighestFileIndex scans an album detail page for the first text node of the
// form "# <digits>" and returns the digits. An album with zero files has no
// such marker.
func HighestFileIndex(r io.Reader) (int, error) {
	z := html.NewTokenizer(r)

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return 0, errors.New(errors.ErrorTypeNoFiles,
					"could not find the highest file index (no files in the album?)")
			}
			return 0, errors.New(errors.ErrorTypeParsing, "malformed album page: %v", z.Err())

		case html.TextToken:
			text := strings.TrimSpace(string(z.Text()))
			if m := fileIndexPattern.FindStringSubmatch(text); m != nil {
				index, err := strconv.Atoi(m[1])
				if err != nil {
					return 0, errors.New(errors.ErrorTypeParsing, "file index out of range: %s", m[1])
				}
				return index, nil
			}
		}
	}
}

// ParseAlbumID extracts the numeric album id from the leading path segment
// of an album link, e.g. "/12/view" yields 12.
func ParseAlbumID(path string) (int, error) {
	m := albumIDPattern.FindStringSubmatch(path)
	if m == nil {
		return 0, errors.New(errors.ErrorTypeParsing, "album path %q has no numeric id segment", path)
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, errors.New(errors.ErrorTypeParsing, "album id out of range: %s", m[1])
	}
	return id, nil
}
