package extract

import (
	"net/url"
	"strings"
	"testing"
)

func TestFromHTML_ReadsWholeBody(t *testing.T) {
	html := `<!doctype html>
    <html>
      <head><title>Terms of Service</title><style>.x{}</style></head>
      <body>
        <nav>Home | Privacy</nav>
        <main>
          <h1>Terms</h1>
          <p>You agree to these terms.</p>
        </main>
        <script>var tracking = 1;</script>
        <footer>Contact us</footer>
      </body>
    </html>`

	doc := FromHTML([]byte(html))
	if doc.Title != "Terms of Service" {
		t.Fatalf("title = %q", doc.Title)
	}
	for _, want := range []string{"Home | Privacy", "Terms", "You agree to these terms.", "Contact us"} {
		if !strings.Contains(doc.Text, want) {
			t.Fatalf("expected %q in %q", want, doc.Text)
		}
	}
	if strings.Contains(doc.Text, "tracking") || strings.Contains(doc.Text, ".x{}") {
		t.Fatalf("script or style text leaked: %q", doc.Text)
	}
}

func TestFromHTML_SkipsHiddenElements(t *testing.T) {
	html := `<body>
      <p>visible</p>
      <div hidden>gone1</div>
      <div aria-hidden="true">gone2</div>
      <div style="display: none">gone3</div>
      <input type="hidden" value="gone4">
    </body>`

	doc := FromHTML([]byte(html))
	if doc.Text != "visible" {
		t.Fatalf("text = %q, want only visible text", doc.Text)
	}
}

func TestFromHTML_BlocksStartNewLines(t *testing.T) {
	html := `<body><div>one</div><div>two</div><span>three</span> <span>four</span><br>five</body>`
	doc := FromHTML([]byte(html))
	want := "one\ntwo\nthree four\nfive"
	if doc.Text != want {
		t.Fatalf("text = %q, want %q", doc.Text, want)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"abcdef", 3, "abc"},
		{"abc", 10, "abc"},
		{"äöüß", 2, "äö"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := Truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeInnerText {
		t.Fatalf("empty: %v %v", m, err)
	}
	if m, err := ParseMode("Readability"); err != nil || m != ModeReadability {
		t.Fatalf("readability: %v %v", m, err)
	}
	if _, err := ParseMode("ocr"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestReadabilityExtractor_FallsBackOnTinyPages(t *testing.T) {
	u, _ := url.Parse("https://example.com/terms")
	raw := []byte(`<html><body><p>short</p></body></html>`)
	doc := For(ModeReadability).Extract(nil, raw, u)
	if !strings.Contains(doc.Text, "short") {
		t.Fatalf("expected fallback text, got %q", doc.Text)
	}
}
