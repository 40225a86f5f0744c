package transcript

import (
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Segment is one timed caption line.
type Segment struct {
	Text     string
	Start    float64
	Duration float64
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// ParseCaptions decodes a timedtext XML document. Inline markup is stripped,
// entities are unescaped, and empty lines are dropped.
func ParseCaptions(data []byte) ([]Segment, error) {
	var doc struct {
		Texts []struct {
			Start float64 `xml:"start,attr"`
			Dur   float64 `xml:"dur,attr"`
			Body  string  `xml:",innerxml"`
		} `xml:"text"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode captions: %w", err)
	}

	segments := make([]Segment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := cleanCaption(t.Body)
		if text == "" {
			continue
		}
		segments = append(segments, Segment{Text: text, Start: t.Start, Duration: t.Dur})
	}
	return segments, nil
}

// cleanCaption unescapes twice: once for the XML layer, once for the HTML
// entities YouTube embeds inside caption text.
func cleanCaption(raw string) string {
	s := html.UnescapeString(raw)
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// Join concatenates segment text with single spaces.
func Join(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}
