package store

import (
	"strings"

	"github.com/qfs-dev/qfs/internal/qerrors"
)

// sanitizeFTSQuery turns free-form user input into a safe FTS5 MATCH
// expression (spec §6 "Query sanitization"): whitespace-split into tokens,
// tokens containing FTS5 operator punctuation are dropped rather than
// escaped, each surviving token is double-quoted (making it a literal
// phrase term to FTS5), and the result is joined with implicit AND.
//
// A token that is itself a quoted phrase ("exact phrase") is preserved as
// one phrase term instead of being split into its words.
func sanitizeFTSQuery(input string) (string, error) {
	tokens := splitQueryTokens(input)

	var terms []string
	for _, tok := range tokens {
		cleaned := cleanToken(tok)
		if cleaned == "" {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(cleaned, `"`, `""`)+`"`)
	}

	if len(terms) == 0 {
		return "", qerrors.InvalidQueryf("query %q has no usable search terms after sanitization", input)
	}

	return strings.Join(terms, " AND "), nil
}

// splitQueryTokens splits on whitespace but keeps double-quoted phrases
// intact as a single token.
func splitQueryTokens(input string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range input {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case !inQuote && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// cleanToken strips surrounding quotes from a phrase token and discards any
// unquoted token still carrying FTS5 operator punctuation that would
// otherwise let it escape its quoted literal (spec §6 "discarding tokens
// containing unsafe punctuation" — the whole token is dropped, not just the
// offending characters).
func cleanToken(tok string) string {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return ""
	}

	quoted := len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"'
	if quoted {
		tok = tok[1 : len(tok)-1]
		return strings.TrimSpace(tok)
	}

	// Inside a literal-quoted FTS5 term only the double-quote itself is
	// dangerous (handled by the caller's escaping); an unquoted token
	// carrying FTS5 syntax punctuation could inject column filters or
	// boolean operators, so it is discarded outright.
	if hasUnsafeRune(tok) {
		return ""
	}

	return tok
}

func hasUnsafeRune(s string) bool {
	return strings.ContainsAny(s, `*:(){}^+-`)
}
