// Package chat assembles transcript context for the research assistant and
// streams its replies.
package chat

import (
	"strings"

	"github.com/cherseta/chersey/internal/store"
)

// NoContext is sent in place of transcript text when nothing is selected.
const NoContext = "No specific context selected."

// BuildContext joins the transcripts of the selected sources with a single
// space, in source order. A source matches by its id, or its legacy video id
// when the id is empty.
func BuildContext(sources []store.Source, selected []string) string {
	if len(selected) == 0 || len(sources) == 0 {
		return NoContext
	}

	want := make(map[string]bool, len(selected))
	for _, id := range selected {
		want[id] = true
	}

	var parts []string
	for _, s := range sources {
		if key := s.Key(); key != "" && want[key] {
			parts = append(parts, s.Transcript)
		}
	}
	if len(parts) == 0 {
		return NoContext
	}
	return strings.Join(parts, " ")
}
