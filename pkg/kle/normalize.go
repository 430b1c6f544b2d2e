package kle

import (
	"errors"
	"strings"

	kperrors "github.com/matzehuels/keyplate/pkg/errors"
)

// Normalize converts fragment text into a strict JSON array of rows.
//
// Steps, in order:
//  1. Trim surrounding whitespace.
//  2. Strip // line comments and /* */ block comments.
//  3. Quote bare identifier keys that follow '{' or ',' and precede ':'.
//  4. Drop one trailing comma.
//  5. Wrap the result in '[' and ']'.
//
// Steps 2 and 3 leave the contents of double-quoted strings alone, so labels
// like "//" or "a,b:" are kept verbatim. Normalize does not validate the
// result; [ParseDocument] does that.
func Normalize(fragment string) (string, error) {
	s := strings.TrimSpace(fragment)

	s, err := stripComments(s)
	if err != nil {
		return "", kperrors.Malformed(fragment, err, "invalid comment")
	}

	s = quoteKeys(s)

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")

	return "[" + s + "]", nil
}

// errUnterminatedComment is returned for a block comment without "*/".
var errUnterminatedComment = errors.New("unterminated block comment")

// stripComments removes // and /* */ comments outside string literals.
// Block comments are non-greedy and may span lines; a line comment runs up
// to, but not including, the newline.
func stripComments(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
			case '"':
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(s) {
			switch s[i+1] {
			case '/':
				end := strings.IndexByte(s[i:], '\n')
				if end < 0 {
					return b.String(), nil
				}
				i += end - 1
				continue
			case '*':
				end := strings.Index(s[i+2:], "*/")
				if end < 0 {
					return "", errUnterminatedComment
				}
				i += 2 + end + 1
				continue
			}
		}

		b.WriteByte(c)
	}
	return b.String(), nil
}

// quoteKeys wraps bare identifier object keys in double quotes:
// {w:1.25} becomes {"w":1.25}. Only identifiers that directly follow '{' or
// ',' (ignoring whitespace) and are followed by ':' (ignoring whitespace)
// are touched, so values are never quoted.
func quoteKeys(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	inString := false
	var prev byte // last non-space byte outside strings
	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			b.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
			case '"':
				inString = false
				prev = '"'
			}
			continue
		}

		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}

		if (prev == '{' || prev == ',') && isIdentStart(c) {
			end := i + 1
			for end < len(s) && isIdentPart(s[end]) {
				end++
			}
			colon := end
			for colon < len(s) && isSpace(s[colon]) {
				colon++
			}
			if colon < len(s) && s[colon] == ':' {
				b.WriteByte('"')
				b.WriteString(s[i:end])
				b.WriteString(`":`)
				i = colon
				prev = ':'
				continue
			}
			b.WriteString(s[i:end])
			i = end - 1
			prev = s[end-1]
			continue
		}

		b.WriteByte(c)
		if !isSpace(c) {
			prev = c
		}
	}
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
