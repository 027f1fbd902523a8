package convert

import (
	"net/url"
	"strings"
	"unicode"
)

// SplitDropped splits text pasted or dropped into a terminal into file
// paths. Terminals and file managers emit several forms:
//
//	/a/b.svg /c/d.svg          whitespace or newline separated
//	{/a/with space.svg}        brace groups
//	'/a/with space.svg'        single or double quotes
//	/a/with\ space.svg         backslash-escaped characters
//	file:///a/with%20space.svg file URIs
//
// Empty tokens are dropped.
func SplitDropped(text string) []string {
	var (
		paths []string
		cur   strings.Builder
		open  bool // cur holds a token, possibly empty ("" or {})
	)

	flush := func() {
		if open {
			if p := fromURI(cur.String()); p != "" {
				paths = append(paths, p)
			}
		}
		cur.Reset()
		open = false
	}

	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			flush()
		case r == '\\' && i+1 < len(rs):
			i++
			cur.WriteRune(rs[i])
			open = true
		case r == '{' && !open:
			end := indexRune(rs, '}', i+1)
			if end < 0 {
				cur.WriteRune(r)
				open = true
				continue
			}
			cur.WriteString(string(rs[i+1 : end]))
			open = true
			i = end
		case r == '"' || r == '\'':
			end := closingQuote(rs, r, i+1)
			if end < 0 {
				cur.WriteRune(r)
				open = true
				continue
			}
			seg := string(rs[i+1 : end])
			if r == '"' {
				seg = unescapeDouble(seg)
			}
			cur.WriteString(seg)
			open = true
			i = end
		default:
			cur.WriteRune(r)
			open = true
		}
	}
	flush()
	return paths
}

func indexRune(rs []rune, r rune, from int) int {
	for i := from; i < len(rs); i++ {
		if rs[i] == r {
			return i
		}
	}
	return -1
}

// closingQuote finds the quote q that closes a segment opened before from.
// Inside double quotes a backslash escapes the next character.
func closingQuote(rs []rune, q rune, from int) int {
	for i := from; i < len(rs); i++ {
		switch {
		case q == '"' && rs[i] == '\\':
			i++
		case rs[i] == q:
			return i
		}
	}
	return -1
}

// unescapeDouble resolves backslash escapes inside a double-quoted segment.
func unescapeDouble(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		if rs[i] == '\\' && i+1 < len(rs) {
			i++
		}
		b.WriteRune(rs[i])
	}
	return b.String()
}

// fromURI turns a file:// URI into a local path; other strings are
// returned unchanged.
func fromURI(s string) string {
	if !strings.HasPrefix(strings.ToLower(s), "file://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.Path == "" {
		return s
	}
	return u.Path
}
