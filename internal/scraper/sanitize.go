package scraper

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// structurePolicy keeps only the elements that carry layout worth turning
// into line breaks. Everything else is stripped to its text; script and style
// content is dropped entirely.
var structurePolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "div", "br", "hr", "ul", "ol", "li",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"table", "tr", "td", "th", "pre", "blockquote",
	)
	return p
}()

const blockSelector = "p, div, ul, ol, h1, h2, h3, h4, h5, h6, table, tr, pre, blockquote"

// maxStallPasses bounds the passes in ToPlainText that change the text
// without shortening it. Passes that shorten it are unbounded, since the
// length can only drop so far.
const maxStallPasses = 16

// ToPlainText converts a markup-bearing description into readable plain text.
// Paragraphs become blank-line separated, list items are prefixed with "* ",
// entities are decoded and whitespace is collapsed. Plain input only has its
// whitespace normalised.
//
// Each pass decodes one level of entities, so the conversion is repeated
// until the output stops changing. Text that decodes into markup (e.g.
// "&amp;lt;b&amp;gt;") still satisfies ToPlainText(ToPlainText(x)) == ToPlainText(x).
func ToPlainText(s string) string {
	stalls := 0
	for {
		next := plainTextPass(s)
		if next == s {
			return next
		}
		if len(next) >= len(s) {
			if stalls++; stalls > maxStallPasses {
				return next
			}
		}
		s = next
	}
}

func plainTextPass(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return normalizeLines(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(structurePolicy.Sanitize(s)))
	if err != nil {
		return normalizeLines(html.UnescapeString(bluemonday.StrictPolicy().Sanitize(s)))
	}

	doc.Find("br, hr").ReplaceWithHtml("\n")
	doc.Find("li").PrependHtml("\n* ")
	doc.Find("td, th").AppendHtml(" ")
	doc.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		sel.PrependHtml("\n\n")
		sel.AppendHtml("\n\n")
	})

	return normalizeLines(doc.Text())
}

// normalizeLines collapses whitespace inside each line, drops leading and
// trailing blank lines and keeps at most one blank line between paragraphs.
func normalizeLines(s string) string {
	var (
		out   []string
		blank bool
	)
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
