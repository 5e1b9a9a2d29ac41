package sections

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/negah-labs/grounder/internal/core/domain"
	"github.com/negah-labs/grounder/internal/core/ports/driven"
)

// bisectScanTokens bounds how far past the midpoint the fallback strategy
// scans for a sentence boundary.
const bisectScanTokens = 200

// bisectWindowTokens is the decode window used to probe for sentence
// terminators during the scan.
const bisectWindowTokens = 10

// Fallback section titles for documents without headings.
const (
	titleFirstPart  = "Part 1"
	titleSecondPart = "Part 2"
)

// Splitter parses HTML documents into sections. The tokenizer is only
// consulted for documents without headings, where the split point is
// found in token space.
type Splitter struct {
	tokenizer driven.Tokenizer
}

// New creates a splitter backed by the given tokenizer.
func New(tokenizer driven.Tokenizer) *Splitter {
	return &Splitter{tokenizer: tokenizer}
}

// Split returns the ordered sections of one HTML document. The result is
// never empty for a document with non-whitespace text, and empty for a
// document without any.
func (s *Splitter) Split(raw []byte) ([]domain.Section, error) {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	// Script/style/comment/image nodes carry no retrievable text and must
	// not appear in output.
	stripNonContent(root)

	body := findBody(root)

	if secs := headingSections(body, atom.H2); len(secs) > 0 {
		return secs, nil
	}
	if secs := headingSections(body, atom.H1); len(secs) > 0 {
		return secs, nil
	}

	return s.bisectSections(body), nil
}

// headingSections subdivides on headings of the given level: each heading
// plus all following siblings up to (excluding) the next same-level
// heading forms one section.
func headingSections(body *html.Node, level atom.Atom) []domain.Section {
	headings := collectHeadings(body, level)
	if len(headings) == 0 {
		return nil
	}

	tag := level.String()
	sections := make([]domain.Section, 0, len(headings))
	for _, h := range headings {
		title := flattenText(h)

		var parts []string
		var siblingText []string
		for sib := h.NextSibling; sib != nil; sib = sib.NextSibling {
			if sib.Type == html.ElementNode && sib.DataAtom == level {
				break
			}
			parts = append(parts, renderNode(sib))
			if t := extractText(sib); t != "" {
				siblingText = append(siblingText, t)
			}
		}

		fragment := fmt.Sprintf("<%s>%s</%s>\n%s",
			tag, html.EscapeString(title), tag, strings.Join(parts, "\n"))
		text := joinLines(title + "\n" + strings.Join(siblingText, "\n"))

		sections = append(sections, domain.Section{
			Title:    title,
			Fragment: fragment,
			Text:     text,
		})
	}

	return sections
}

// bisectSections handles documents without headings: the full body text
// is tokenized and cut at the first sentence boundary at or after the
// midpoint, yielding exactly two ordinal sections. A token-free document
// yields none.
func (s *Splitter) bisectSections(body *html.Node) []domain.Section {
	fullText := joinLines(extractText(body))
	tokens := s.tokenizer.Encode(fullText)
	n := len(tokens)
	if n == 0 {
		return nil
	}

	mid := n / 2
	splitIdx := mid
	limit := bisectScanTokens
	if n-mid < limit {
		limit = n - mid
	}
	for offset := 0; offset < limit; offset++ {
		end := mid + offset + bisectWindowTokens
		if end > n {
			end = n
		}
		window := s.tokenizer.Decode(tokens[mid+offset : end])
		if strings.ContainsAny(window, "\n.。") {
			splitIdx = mid + offset
			break
		}
	}

	return []domain.Section{
		{Title: titleFirstPart, Text: s.tokenizer.Decode(tokens[:splitIdx])},
		{Title: titleSecondPart, Text: s.tokenizer.Decode(tokens[splitIdx:])},
	}
}

// stripNonContent removes script, style, noscript, comment, and img nodes
// from the tree in place.
func stripNonContent(n *html.Node) {
	var next *html.Node
	for child := n.FirstChild; child != nil; child = next {
		next = child.NextSibling
		if isNonContent(child) {
			n.RemoveChild(child)
			continue
		}
		stripNonContent(child)
	}
}

func isNonContent(n *html.Node) bool {
	if n.Type == html.CommentNode {
		return true
	}
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Img:
		return true
	default:
		return false
	}
}

// findBody returns the document's body element, or the root when the
// fragment has none.
func findBody(root *html.Node) *html.Node {
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if body == nil {
		return root
	}
	return body
}

// collectHeadings returns all headings of the given level in document
// order, at any depth.
func collectHeadings(n *html.Node, level atom.Atom) []*html.Node {
	var headings []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == level {
			headings = append(headings, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return headings
}

// flattenText joins a node's text content with single spaces, for
// heading titles.
func flattenText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

// extractText joins a node's text content with newlines, one entry per
// text node, trimmed.
func extractText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, "\n")
}

// renderNode serialises a node back to HTML.
func renderNode(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// joinLines trims every line and drops empty ones, normalising section
// text whitespace.
func joinLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
