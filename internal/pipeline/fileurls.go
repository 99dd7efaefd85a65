package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FileURLs rewrites local image sources and link targets to file:// URLs so
// the browser engine can load them from a document opened as data.
// Relative paths are resolved against sourceDir. Paths that leave sourceDir
// are left untouched, as is everything when sourceDir is empty.
func FileURLs(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}
	root, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	doc, fragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}
	walkElements(doc, func(n *html.Node) {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", root)
		case atom.A:
			rewriteAttr(n, "href", root)
		}
	})
	return renderHTML(doc, fragment)
}

// parseHTML parses a full document or, failing a doctype or <html> prefix,
// a body fragment wrapped in a synthetic document node.
func parseHTML(content string) (*html.Node, bool, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

func renderHTML(doc *html.Node, fragment bool) (string, error) {
	var buf strings.Builder
	if !fragment {
		err := html.Render(&buf, doc)
		return buf.String(), err
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func walkElements(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, fn)
	}
}

func rewriteAttr(n *html.Node, key, root string) {
	for i, a := range n.Attr {
		if a.Key != key || !isLocalPath(a.Val) {
			continue
		}
		p := a.Val
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		if !isPathUnderDir(p, root) {
			continue
		}
		n.Attr[i].Val = (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
	}
}

// isLocalPath reports whether path names a file rather than a URL or anchor.
func isLocalPath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	return !hasScheme(path)
}

// hasScheme reports a URL scheme such as "https:" or "mailto:". A single
// letter before the colon is a Windows drive, not a scheme.
func hasScheme(path string) bool {
	i := strings.IndexByte(path, ':')
	if i < 2 {
		return false
	}
	for j, r := range path[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// isRelativePath reports whether path is a local path that still needs a
// base directory.
func isRelativePath(path string) bool {
	return isLocalPath(path) && !filepath.IsAbs(path)
}

func isPathUnderDir(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
