// Package textutils provides the text-extraction primitives shared by the
// bank email parsers: HTML-to-text rendering, label/value table extraction,
// and accent-insensitive matching.
//
// The banks' Spanish-language emails mix accented and unaccented spellings of
// the same labels ("Autorización" vs "Autorizacion"), so every comparison in
// this package folds diacritics before matching.
package textutils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var whitespace = regexp.MustCompile(`\s+`)

// Fold removes diacritic marks: "Autorización" → "Autorizacion".
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return folded
}

// FoldLower removes diacritics and lowercases, the canonical form used for
// keyword and label comparison.
func FoldLower(s string) string {
	return strings.ToLower(Fold(s))
}

// CollapseWhitespace trims the string and replaces runs of whitespace with a
// single space.
func CollapseWhitespace(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeKey canonicalizes a table label for lookup: fold, lowercase,
// collapse whitespace, drop a trailing colon.
func NormalizeKey(s string) string {
	s = CollapseWhitespace(FoldLower(s))
	return strings.TrimSpace(strings.TrimSuffix(s, ":"))
}

// blockTags are HTML elements that imply a line break in the text rendering.
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "tr": true, "table": true,
	"li": true, "h1": true, "h2": true, "h3": true, "h4": true,
}

// HTMLToText renders an HTML fragment as plain text, one line per block
// element. Malformed HTML never fails: the tokenizer recovers and whatever
// text was found is returned.
func HTMLToText(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
			if blockTags[n.Data] {
				sb.WriteString("\n")
			}
			if n.Data == "td" || n.Data == "th" {
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	lines := strings.Split(sb.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = CollapseWhitespace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// ExtractTableFields tokenizes the table-like structure of a notification
// body into a label→value map. Each row whose first cell looks like a label
// contributes one entry; keys are normalized with NormalizeKey. The first
// occurrence of a label wins.
func ExtractTableFields(htmlStr string) map[string]string {
	fields := make(map[string]string)

	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return fields
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			cells := rowCells(n)
			if len(cells) >= 2 && cells[0] != "" {
				key := NormalizeKey(cells[0])
				if _, exists := fields[key]; !exists && key != "" {
					fields[key] = cells[1]
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return fields
}

// rowCells returns the collapsed text of each td/th cell in a table row.
func rowCells(tr *html.Node) []string {
	var cells []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") {
			cells = append(cells, CollapseWhitespace(nodeText(n)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(tr)
	return cells
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// FindLabeledValue scans a plain-text rendering line by line for any of the
// given label synonyms (compared accent-insensitively) and returns the text
// following the label on the first matching line. The label must either open
// the line or be followed by a colon; this anchors the scan the way the
// notification layouts do. Returns "" when no line matches.
func FindLabeledValue(text string, labels ...string) string {
	for _, line := range strings.Split(text, "\n") {
		lineRunes := []rune(line)
		folded := FoldLowerRunes(lineRunes)
		for _, label := range labels {
			labelRunes := []rune(FoldLower(label))
			idx := IndexRunes(folded, labelRunes)
			if idx < 0 {
				continue
			}
			rest := lineRunes[idx+len(labelRunes):]
			anchored := idx == 0
			for len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t') {
				rest = rest[1:]
			}
			if len(rest) > 0 && (rest[0] == ':' || rest[0] == '：') {
				rest = rest[1:]
				anchored = true
			}
			if !anchored {
				continue
			}
			if value := strings.TrimSpace(string(rest)); value != "" {
				return value
			}
		}
	}
	return ""
}

// FoldLowerRunes folds and lowercases rune by rune, preserving indices so a
// match position in the folded text maps back onto the original runes. Byte
// offsets do not survive folding ("É" is two bytes, "e" is one); rune offsets
// do.
func FoldLowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		folded := Fold(string(r))
		if folded == "" {
			out[i] = r
			continue
		}
		out[i] = unicode.ToLower([]rune(folded)[0])
	}
	return out
}

// IndexRunes returns the rune index of the first occurrence of needle in
// haystack, or -1 when absent.
func IndexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// ContainsAny reports whether the folded, lowercased text contains any of the
// given phrases (also folded and lowercased).
func ContainsAny(text string, phrases ...string) bool {
	folded := FoldLower(text)
	for _, phrase := range phrases {
		if strings.Contains(folded, FoldLower(phrase)) {
			return true
		}
	}
	return false
}
