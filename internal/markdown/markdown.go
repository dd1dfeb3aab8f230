// Package markdown renders post bodies to HTML and derives plain-text excerpts.
package markdown

import (
	stdhtml "html"
	"html/template"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	md "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Options controls link handling. Absolute links under RootURL are rewritten to site-relative paths.
type Options struct {
	RootURL string
}

const lastGoodBreakRatio = 0.8

var (
	codeFencePattern  = regexp.MustCompile("(?s)```.*?```")
	imagePattern      = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	ruleLinePattern   = regexp.MustCompile(`(?m)^---+$`)
	emphasisPattern   = regexp.MustCompile(`(\*{1,3}|_{1,2}|~~)(.*?)(\*{1,3}|_{1,2}|~~)`)
	headingPattern    = regexp.MustCompile(`(?m)^#{1,6}\s+(.*?)$`)
	inlineCodePattern = regexp.MustCompile("`(.*?)`")
	linkPattern       = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	quotePattern      = regexp.MustCompile(`(?m)^\s*>\s*(.*?)$`)
	listItemPattern   = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
)

// ToHTML renders markdown with fenced code highlighted through chroma CSS classes. Raw HTML is dropped.
func ToHTML(input string, opts Options) template.HTML {
	if strings.TrimSpace(input) == "" {
		return template.HTML("")
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(input))
	rewriteLinks(doc, opts.RootURL)

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags:          mdhtml.CommonFlags | mdhtml.SkipHTML,
		RenderNodeHook: renderNodeHook,
	})

	return template.HTML(md.Render(doc, renderer))
}

// Excerpt strips markdown syntax and cuts the text at a word boundary near maxChars runes.
func Excerpt(input string, maxChars int) string {
	if maxChars < 1 {
		return ""
	}

	clean := plainText(input)
	if utf8.RuneCountInString(clean) <= maxChars {
		return clean
	}

	return truncateRunes(clean, maxChars)
}

func plainText(input string) string {
	text := input
	text = codeFencePattern.ReplaceAllString(text, " ")
	text = imagePattern.ReplaceAllString(text, " ")
	text = ruleLinePattern.ReplaceAllString(text, " ")
	text = headingPattern.ReplaceAllString(text, "\n$1\n")
	text = emphasisPattern.ReplaceAllString(text, "$2")
	text = inlineCodePattern.ReplaceAllString(text, "$1")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = quotePattern.ReplaceAllString(text, "$1")
	text = listItemPattern.ReplaceAllString(text, "")
	text = htmlTagPattern.ReplaceAllString(text, "")

	return strings.Join(strings.Fields(text), " ")
}

func truncateRunes(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	cut := maxChars
	minBreak := int(float64(maxChars) * lastGoodBreakRatio)
	for idx := maxChars - 1; idx >= minBreak; idx-- {
		if unicode.IsSpace(runes[idx]) {
			cut = idx
			break
		}
	}

	truncated := strings.TrimSpace(string(runes[:cut]))
	if truncated == "" {
		truncated = strings.TrimSpace(string(runes[:maxChars]))
	}

	return truncated + "..."
}

// rewriteLinks makes same-site absolute links relative and opens off-site links in a new tab.
func rewriteLinks(doc ast.Node, rootURL string) {
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}

		link, ok := node.(*ast.Link)
		if !ok {
			return ast.GoToNext
		}

		href, local := localHref(string(link.Destination), rootURL)
		link.Destination = []byte(href)
		if !local {
			link.AdditionalAttributes = append(link.AdditionalAttributes, `target="_blank"`, `rel="noopener noreferrer"`)
		}

		return ast.GoToNext
	})
}

func localHref(href, rootURL string) (string, bool) {
	if strings.HasPrefix(href, "/") || strings.HasPrefix(href, "#") {
		return href, true
	}
	if rootURL == "" || !strings.HasPrefix(href, rootURL) {
		return href, false
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return href, true
	}

	out := parsed.Path
	if out == "" {
		out = "/"
	}
	if parsed.RawQuery != "" {
		out += "?" + parsed.RawQuery
	}
	if parsed.Fragment != "" {
		out += "#" + parsed.Fragment
	}
	return out, true
}

func renderNodeHook(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	if !entering {
		return ast.GoToNext, false
	}

	switch n := node.(type) {
	case *ast.CodeBlock:
		renderCodeBlock(w, n)
		return ast.SkipChildren, true
	case *ast.Code:
		_, _ = io.WriteString(w, `<code class="inline-code">`)
		_, _ = io.WriteString(w, stdhtml.EscapeString(string(n.Literal)))
		_, _ = io.WriteString(w, `</code>`)
		return ast.SkipChildren, true
	default:
		return ast.GoToNext, false
	}
}

func renderCodeBlock(w io.Writer, block *ast.CodeBlock) {
	code := string(block.Literal)
	iterator, err := pickLexer(codeLanguage(block.Info), code).Tokenise(nil, code)
	if err == nil {
		formatter := chromahtml.New(chromahtml.WithClasses(true))
		if err = formatter.Format(w, styles.Fallback, iterator); err == nil {
			return
		}
	}

	_, _ = io.WriteString(w, `<pre class="chroma"><code>`)
	_, _ = io.WriteString(w, stdhtml.EscapeString(code))
	_, _ = io.WriteString(w, `</code></pre>`)
}

func pickLexer(language, code string) chroma.Lexer {
	if language != "" {
		if lexer := lexers.Get(language); lexer != nil {
			return lexer
		}
	}
	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer
	}
	return lexers.Fallback
}

func codeLanguage(info []byte) string {
	fields := strings.Fields(string(info))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
