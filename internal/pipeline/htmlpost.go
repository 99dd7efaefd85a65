package pipeline

import (
	"context"
	"strings"
)

// Placeholders use Unicode Private Use Area characters. They pass through
// Goldmark unchanged (no WithUnsafe needed) and are expanded into spans by
// ExpandPlaceholders once the HTML exists.
const (
	SmallCapsStart   = "\uE010"
	SmallCapsEnd     = "\uE011"
	SidenoteStart    = "\uE012"
	SidenoteEnd      = "\uE013"
	ChapterMarkStart = "\uE014"
	ChapterMarkEnd   = "\uE015"
)

var placeholderExpander = strings.NewReplacer(
	SmallCapsStart, `<span class="smallcaps">`,
	SmallCapsEnd, `</span>`,
	SidenoteStart, `<span class="sidenote">`,
	SidenoteEnd, `</span>`,
	ChapterMarkStart, `<span class="chapter-mark">`,
	ChapterMarkEnd, `</span>`,
)

// ExpandPlaceholders turns placeholder pairs into span elements.
func ExpandPlaceholders(htmlContent string) string {
	return placeholderExpander.Replace(htmlContent)
}

// StripPlaceholders removes placeholder characters, keeping their content.
func StripPlaceholders(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0xE010 && r <= 0xE015 {
			return -1
		}
		return r
	}, s)
}

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

var _ CSSInjector = (*CSSInjection)(nil)

// InjectCSS inserts a <style> block before </head>, after <body>, or at the
// start of the content, in that order of preference.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" || ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could close the <style> block early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
