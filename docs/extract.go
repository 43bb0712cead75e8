// Package docs handles documentation ingestion: converting uploaded documents
// to plain text and splitting that text into prompt-sized chunks.
package docs

import (
	"bytes"
	"log"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/yuin/goldmark"
)

// fakeBase satisfies readability's need for a document URL; uploaded content
// has none.
var fakeBase = &url.URL{Scheme: "http", Host: "localhost"}

// ExtractText converts raw document content to plain text based on its
// declared type. Plain text and pre-extracted PDF content pass through
// unchanged; markdown is rendered to HTML first, then both markdown and HTML
// go through article extraction. ExtractText never fails: if conversion
// breaks down it returns the raw content as-is.
func ExtractText(content, docType string) string {
	switch docType {
	case "md":
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(content), &buf); err != nil {
			log.Printf("markdown conversion failed, using raw content: %v", err)
			return content
		}
		return htmlToText(buf.String(), content)
	case "html":
		return htmlToText(content, content)
	default: // "txt", "pdf" (pre-extracted)
		return content
	}
}

// htmlToText extracts readable text from an HTML document, falling back to
// the given original content when extraction yields nothing usable.
func htmlToText(html, fallback string) string {
	article, err := readability.FromReader(strings.NewReader(html), fakeBase)
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		if err != nil {
			log.Printf("html text extraction failed, using raw content: %v", err)
		}
		return fallback
	}
	return article.TextContent
}
