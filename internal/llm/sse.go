package llm

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// errStopStream ends a read early when the consumer stops iterating.
var errStopStream = errors.New("stream stopped")

type sseEvent struct {
	Event string
	Data  string
}

// readSSE parses a text/event-stream body, calling fn once per event.
// Multi-line data fields are joined with newlines; comments are skipped.
func readSSE(r io.Reader, fn func(sseEvent) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var ev sseEvent
	var data []string
	dispatch := func() error {
		if len(data) == 0 {
			ev = sseEvent{}
			return nil
		}
		ev.Data = strings.Join(data, "\n")
		err := fn(ev)
		ev, data = sseEvent{}, data[:0]
		return err
	}

	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			if err := dispatch(); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			ev.Event = value
		case "data":
			data = append(data, value)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return dispatch()
}
