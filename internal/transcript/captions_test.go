package transcript

import (
	"testing"
)

func TestParseCaptions(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="1.2">Hello &amp;amp; welcome</text>
<text start="1.7" dur="2">it&amp;#39;s &lt;font color=&quot;#fff&quot;&gt;great&lt;/font&gt;</text>
<text start="3.7" dur="0.4">   </text>
<text start="4.1" dur="1">[Music]</text>
</transcript>`

	segments, err := ParseCaptions([]byte(doc))
	if err != nil {
		t.Fatalf("ParseCaptions: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("segments = %d, want 3: %+v", len(segments), segments)
	}
	if segments[0].Text != "Hello & welcome" || segments[0].Start != 0.5 || segments[0].Duration != 1.2 {
		t.Errorf("segments[0] = %+v", segments[0])
	}
	if segments[1].Text != "it's great" {
		t.Errorf("segments[1].Text = %q, want %q", segments[1].Text, "it's great")
	}
	if got := Join(segments); got != "Hello & welcome it's great [Music]" {
		t.Errorf("Join = %q", got)
	}
}

func TestParseCaptionsMalformed(t *testing.T) {
	if _, err := ParseCaptions([]byte("<transcript><text>")); err == nil {
		t.Error("expected error for malformed XML")
	}
}

func TestPickTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "de", LanguageCode: "de"},
		{BaseURL: "en-asr", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "en", LanguageCode: "en"},
	}
	if got := pickTrack(tracks, []string{"en"}); got.BaseURL != "en" {
		t.Errorf("pickTrack = %q, want manual en", got.BaseURL)
	}
	if got := pickTrack(tracks[:2], []string{"en"}); got.BaseURL != "en-asr" {
		t.Errorf("pickTrack = %q, want en-asr", got.BaseURL)
	}
	if got := pickTrack(tracks, []string{"fr"}); got.BaseURL != "de" {
		t.Errorf("pickTrack = %q, want first track", got.BaseURL)
	}
}
