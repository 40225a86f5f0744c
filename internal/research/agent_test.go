package research

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/cherseta/chersey/internal/llm"
	"github.com/cherseta/chersey/internal/logger"
	"github.com/cherseta/chersey/internal/search"
)

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	fail    map[string]bool
}

func (f *fakeSearcher) Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.fail[query] {
		return nil, errors.New("rate limited")
	}
	if opts.Depth != "basic" || opts.MaxResults != 3 {
		return nil, errors.New("unexpected options")
	}
	return []search.Result{{Title: query, URL: "https://example.com/" + query}}, nil
}

func newAgent(mock *llm.MockClient, s Searcher) *Agent {
	return NewAgent(llm.Ready[llm.Client](mock), s, search.Options{}, logger.NewNop())
}

func TestParseQueries(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"1. foo\n2) bar\n\nbaz", []string{"foo", "bar", "baz"}},
		{"  3- dash\n- bullet\n* star", []string{"dash", "bullet", "star"}},
		{"plain query", []string{"plain query"}},
		{"\n\n  \n", nil},
		{"10. tenth", []string{"tenth"}},
	}
	for _, tt := range tests {
		if got := ParseQueries(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseQueries(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Errorf("Truncate = %q, want hé", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("Truncate = %q, want abc", got)
	}
}

func TestRunWhitespaceMakesNoCalls(t *testing.T) {
	mock := &llm.MockClient{}
	s := &fakeSearcher{}
	results, err := newAgent(mock, s).Run(context.Background(), "   \n\t")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
	if mock.CallCount() != 0 || len(s.queries) != 0 {
		t.Errorf("calls: llm=%d search=%d, want 0", mock.CallCount(), len(s.queries))
	}
}

func TestRunCapsAtThreeQueries(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{Content: "1. a\n2. b\n3. c\n4. d"}}
	s := &fakeSearcher{}

	results, err := newAgent(mock, s).Run(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(s.queries, []string{"a", "b", "c"}) {
		t.Errorf("queries = %v, want [a b c]", s.queries)
	}
	if len(results) != 3 || results[0].Title != "a" || results[2].Title != "c" {
		t.Errorf("results = %+v", results)
	}

	req := mock.LastCall()
	if req.System != llm.ResearchSystemPrompt || req.Temperature != 0.3 {
		t.Errorf("request = %+v", req)
	}
}

func TestRunTruncatesInput(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{Content: "q"}}
	long := strings.Repeat("z", MaxInputRunes+500)

	if _, err := newAgent(mock, &fakeSearcher{}).Run(context.Background(), long); err != nil {
		t.Fatalf("Run: %v", err)
	}
	prompt := mock.LastCall().Messages[0].Text
	if got := strings.Count(prompt, "z"); got != MaxInputRunes {
		t.Errorf("prompt carries %d chars of input, want %d", got, MaxInputRunes)
	}
}

func TestRunSkipsFailedSearch(t *testing.T) {
	mock := &llm.MockClient{Response: &llm.Response{Content: "a\nb\nc"}}
	s := &fakeSearcher{fail: map[string]bool{"b": true}}

	results, err := newAgent(mock, s).Run(context.Background(), "text")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 || results[0].Title != "a" || results[1].Title != "c" {
		t.Errorf("results = %+v, want a, c", results)
	}
}

func TestRunGenerationFailure(t *testing.T) {
	mock := &llm.MockClient{Err: errors.New("groq down")}
	if _, err := newAgent(mock, &fakeSearcher{}).Run(context.Background(), "text"); err == nil {
		t.Error("expected error when query generation fails")
	}
}

func TestRunUnavailableClient(t *testing.T) {
	lazy := llm.NewLazy(func() (llm.Client, error) { return nil, llm.ErrUnavailable })
	a := NewAgent(lazy, &fakeSearcher{}, search.Options{}, logger.NewNop())
	if _, err := a.Run(context.Background(), "text"); !errors.Is(err, llm.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
