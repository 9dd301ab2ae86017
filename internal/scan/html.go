package scan

import (
	"bytes"
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/kfreiman/piigate/internal/retry"
	"github.com/kfreiman/piigate/internal/storage"
	"golang.org/x/net/html"
)

// HTMLConverter extracts text from HTML files using go-readability
type HTMLConverter struct {
	reader fileReader
}

// NewHTMLConverter creates a new HTMLConverter
func NewHTMLConverter(fsys storage.FileSystem) *HTMLConverter {
	return &HTMLConverter{reader: fileReader{fs: fsys, retry: retry.DefaultConfig}}
}

func (c *HTMLConverter) Supports(path string) bool {
	switch extOf(path) {
	case ".html", ".htm":
		return true
	}
	return false
}

// Convert extracts the readable article text. Pages readability cannot make
// sense of fall back to every visible text node, since a scan must not skip
// content just because it is not an article.
func (c *HTMLConverter) Convert(ctx context.Context, path string) (string, error) {
	data, err := c.reader.read(ctx, path)
	if err != nil {
		return "", err
	}

	pageURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err == nil && article.Node != nil {
		var buf bytes.Buffer
		if err := article.RenderText(&buf); err == nil {
			if content := strings.TrimSpace(buf.String()); content != "" {
				return content, nil
			}
		}
	}

	content, err := visibleText(data)
	if err != nil {
		return "", &ConversionError{
			Path:   path,
			Format: "html",
			Err:    err,
			Hint:   "failed to parse HTML",
		}
	}
	return content, nil
}

// visibleText returns the document's text nodes one per line, skipping
// script and style content
func visibleText(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				lines = append(lines, text)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return strings.Join(lines, "\n"), nil
}
