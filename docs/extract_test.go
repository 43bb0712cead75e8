package docs

import (
	"strings"
	"testing"
)

func TestExtractTextPassthrough(t *testing.T) {
	for _, docType := range []string{"txt", "pdf", "unknown"} {
		content := "plain content stays as-is"
		if got := ExtractText(content, docType); got != content {
			t.Errorf("%s: got %q", docType, got)
		}
	}
}

func TestExtractTextMarkdown(t *testing.T) {
	md := "# Setup Guide\n\nInstall the toolchain first. Then clone the repository and run the test suite to confirm the environment works end to end.\n\n- step one\n- step two\n"
	got := ExtractText(md, "md")
	if !strings.Contains(got, "Install the toolchain") {
		t.Fatalf("markdown body lost: %q", got)
	}
	if strings.Contains(got, "# Setup") {
		t.Fatalf("markdown syntax survived extraction: %q", got)
	}
}

func TestExtractTextHTML(t *testing.T) {
	html := `<html><body><article><h1>Guide</h1><p>The deployment pipeline builds a container image and pushes it to the registry before rolling out.</p></article></body></html>`
	got := ExtractText(html, "html")
	if !strings.Contains(got, "deployment pipeline") {
		t.Fatalf("html body lost: %q", got)
	}
	if strings.Contains(got, "<p>") {
		t.Fatalf("markup survived extraction: %q", got)
	}
}

func TestExtractTextNeverFails(t *testing.T) {
	// Garbage in, something out. Extraction degrades to the raw content.
	garbage := "<<<<not really markup"
	if got := ExtractText(garbage, "html"); got == "" {
		t.Fatal("extraction returned nothing")
	}
	if got := ExtractText("", "md"); got != "" {
		t.Fatalf("empty markdown: got %q", got)
	}
}
