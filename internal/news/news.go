// Package news loads news items: one item per line of a text file, or one
// item per paragraph of an HTML document.
package news

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/quotescan/internal/model"
	"golang.org/x/net/html"
)

// Load reads news items from path, choosing the format by extension
func Load(path string) ([]model.NewsItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open news: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return ParseHTML(f)
	default:
		return ParseLines(f)
	}
}

// ParseLines returns one item per non-empty line
func ParseLines(r io.Reader) ([]model.NewsItem, error) {
	var items []model.NewsItem

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		items = append(items, model.NewsItem{Index: len(items), Text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan news: %w", err)
	}

	return items, nil
}

// blockElements end a paragraph of visible text
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "article": true, "section": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "td": true, "tr": true,
}

// ParseHTML returns one item per paragraph of visible text
func ParseHTML(r io.Reader) ([]model.NewsItem, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var items []model.NewsItem
	var buf strings.Builder
	flush := func() {
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if text != "" {
			items = append(items, model.NewsItem{Index: len(items), Text: text})
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
		}

		if n.Type == html.TextNode {
			buf.WriteString(strings.TrimSpace(n.Data))
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			flush()
		}
	}

	walk(doc)
	flush()
	return items, nil
}
