// Package transcript fetches YouTube video titles and caption transcripts.
package transcript

import (
	"errors"
	"regexp"
)

// ErrInvalidURL is returned when no video id can be found in a URL.
var ErrInvalidURL = errors.New("invalid YouTube URL")

var videoIDRe = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11}).*`)

// ExtractVideoID returns the 11-character video id from a watch, short,
// embed or youtu.be URL.
func ExtractVideoID(url string) (string, error) {
	m := videoIDRe.FindStringSubmatch(url)
	if m == nil {
		return "", ErrInvalidURL
	}
	return m[1], nil
}
