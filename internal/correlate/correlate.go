// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package correlate ties raw source lines back to the branch value
// variables they mention. A line is tokenized shell-style to decide which
// known identifiers it contains; the comment and assignment judgements
// are then crude substring probes against the untokenized line. The
// probes admit false positives (an identifier in front of an unrelated
// comparison, a marker inside a string); that looseness is part of the
// contract, not something to tighten here.
package correlate

import "regexp"

// Classification reports how a line relates to one identifier. Both
// flags may be set, and both may be clear.
type Classification struct {
	// Comment is true when a // or /* marker appears after the
	// identifier on the line.
	Comment bool

	// Assign is true when a plain = (not part of ==) appears after the
	// identifier on the line.
	Assign bool
}

// Identifiers returns the tokens of line for which known reports true,
// deduplicated, in first-appearance order.
func Identifiers(line string, known func(string) bool) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range Tokens(line) {
		if seen[tok] || !known(tok) {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Classify probes line for commentary about and assignment to ident.
// ident must consist of word characters and dots (as extracted by the
// branch matchers); it is interpolated into the probe patterns verbatim,
// so a dot matches any character, exactly as loosely as intended.
func Classify(line, ident string) Classification {
	return Classification{
		Comment: regexp.MustCompile(ident + `.*/[/*]`).MatchString(line),
		Assign:  regexp.MustCompile(ident + `[^=]*=[^=]`).MatchString(line),
	}
}

// Tokens splits a line the way a shell lexer in non-POSIX mode does:
// runs of word characters form one token, quoted strings are one token
// with the quotes kept, a # starts a comment that runs to end of line,
// and every other non-space character is a single-character token. An
// unclosed quote consumes the rest of the line instead of failing: a
// malformed string literal should not abort a scan.
func Tokens(line string) []string {
	var tokens []string
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '#':
			return tokens
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(line) && line[j] != c {
				j++
			}
			if j < len(line) {
				j++ // include the closing quote
			}
			tokens = append(tokens, line[i:j])
			i = j
		case isWordChar(c):
			j := i + 1
			for j < len(line) && isWordChar(line[j]) {
				j++
			}
			tokens = append(tokens, line[i:j])
			i = j
		default:
			tokens = append(tokens, line[i:i+1])
			i++
		}
	}
	return tokens
}

func isWordChar(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
