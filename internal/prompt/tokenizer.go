package prompt

import (
	"regexp"
	"strings"
)

var (
	// weightRE matches emphasis weights such as 1.1 or 0.85.
	weightRE = regexp.MustCompile(`\d+\.\d+`)

	// separatorRunRE matches runs of two or more commas/whitespace.
	separatorRunRE = regexp.MustCompile(`[,\s]{2,}`)

	groupReplacer = strings.NewReplacer("(", ",", ")", ",")
	spanReplacer  = strings.NewReplacer("<", ",<", ">", ">,")
)

// Tokenize splits a prompt into normalized tags in first-seen order.
//
// The following transformations are applied in order:
//  1. Emphasis weights (digits.digits) are removed
//  2. Parentheses become commas
//  3. <...> spans become standalone tokens; colons outside spans are removed
//  4. Newlines become commas
//  5. Runs of commas/whitespace collapse into one comma
//  6. Leading/trailing whitespace and commas are trimmed
//  7. The text is split on commas, dropping empty tokens
//
// Duplicate tags are kept.
func Tokenize(text string) []string {
	text = weightRE.ReplaceAllString(text, "")
	text = groupReplacer.Replace(text)
	text = spanReplacer.Replace(text)
	text = stripLooseColons(text)
	text = strings.ReplaceAll(text, "\n", ",")
	text = separatorRunRE.ReplaceAllString(text, ",")
	text = strings.TrimSpace(text)
	text = strings.Trim(text, ",")

	tags := make([]string, 0, strings.Count(text, ",")+1)
	for _, tok := range strings.Split(text, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			tags = append(tags, tok)
		}
	}
	return tags
}

// Join renders tags back into prompt text.
func Join(tags []string) string {
	return strings.Join(tags, ",")
}

// stripLooseColons removes every ':' that is not inside a <...> span.
//
// A colon belongs to a span when a '>' follows it before any '<'.
func stripLooseColons(text string) string {
	if !strings.Contains(text, ":") {
		return text
	}

	keep := make([]bool, len(text))
	closeAhead := false
	for i := len(text) - 1; i >= 0; i-- {
		switch text[i] {
		case '>':
			closeAhead = true
		case '<':
			closeAhead = false
		case ':':
			keep[i] = closeAhead
		}
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == ':' && !keep[i] {
			continue
		}
		b.WriteByte(text[i])
	}
	return b.String()
}
