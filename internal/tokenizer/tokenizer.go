// Package tokenizer implements the code-aware, multi-script tokenizer
// used by the BM25F encoder. It splits identifiers in all common casing
// conventions and preserves CJK/Hangul/Kana runs verbatim, checking a
// fast delimiter path before falling back to a camel-case regex, and
// caches the per-identifier split result since the same identifiers
// recur heavily across a codebase.
package tokenizer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
)

// wordPattern extracts ASCII identifier runs (letters, digits, '_', '-')
// plus Hangul, Kana, and CJK-unified-ideograph runs.
var wordPattern = regexp.MustCompile(
	`[a-zA-Z0-9_\-]+` +
		`|[\x{AC00}-\x{D7A3}\x{1100}-\x{11FF}\x{3130}-\x{318F}]+` +
		`|[\x{3040}-\x{309F}\x{30A0}-\x{30FF}]+` +
		`|[\x{4E00}-\x{9FFF}]+`,
)

// splitCamelCase splits a run of letters/digits the way camelCase and
// PascalCase identifiers are conventionally read, without relying on
// regex lookahead (which RE2 cannot express): lowercase and digit runs
// are their own tokens; an uppercase run gives up its last letter to
// the following capitalized word when one follows (HTTPHandler -> HTTP,
// Handler), and otherwise stands alone (ID -> id).
func splitCamelCase(s string) []string {
	var out []string
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case isLower(c):
			j := i
			for j < len(s) && isLower(s[j]) {
				j++
			}
			out = append(out, s[i:j])
			i = j
		case isDigit(c):
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			out = append(out, s[i:j])
			i = j
		case isUpper(c):
			j := i
			for j < len(s) && isUpper(s[j]) {
				j++
			}
			switch {
			case j-i == 1:
				k := j
				for k < len(s) && isLower(s[k]) {
					k++
				}
				out = append(out, s[i:k])
				i = k
			case j < len(s) && isLower(s[j]):
				// Acronym run followed by a capitalized word: the last
				// uppercase letter starts that word instead.
				out = append(out, s[i:j-1])
				i = j - 1
			default:
				out = append(out, s[i:j])
				i = j
			}
		default:
			i++
		}
	}
	return out
}

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

const identifierCacheSize = 10000

var identifierCache *lru.Cache[string, []string]

func init() {
	c, err := lru.New[string, []string](identifierCacheSize)
	if err != nil {
		panic(err) // identifierCacheSize is a positive constant; New cannot fail
	}
	identifierCache = c
}

// splitIdentifier breaks an ASCII identifier into lowercase parts, trying
// the delimiter fast path before the camelCase slow path:
//
//	getUserById      -> [get user by id]
//	HTTPHandler      -> [http handler]
//	get_user_by_id   -> [get user by id]
//	user-profile-view -> [user profile view]
//	MAX_RETRY_COUNT  -> [max retry count]
func splitIdentifier(identifier string) []string {
	if identifier == "" {
		return nil
	}
	if cached, ok := identifierCache.Get(identifier); ok {
		return cached
	}

	var raw []string
	switch {
	case strings.Contains(identifier, "_"):
		raw = splitNonEmpty(identifier, '_')
	case strings.Contains(identifier, "-"):
		raw = splitNonEmpty(identifier, '-')
	default:
		raw = splitCamelCase(identifier)
	}

	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p == "" {
			continue
		}
		parts = append(parts, strings.ToLower(p))
	}

	identifierCache.Add(identifier, parts)
	return parts
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// Tokenize splits text into identifier/word tokens, applying identifier
// splitting to ASCII runs and keeping CJK runs intact. Single-character
// ASCII tokens are dropped; single-character CJK tokens are kept.
//
// Tokenize is pure and deterministic: equal inputs yield equal outputs in
// every process and run.
func Tokenize(text string) []string {
	rawTokens := wordPattern.FindAllString(text, -1)

	expanded := make([]string, 0, len(rawTokens))
	for _, tok := range rawTokens {
		if isASCIIRune(tok) {
			expanded = append(expanded, splitIdentifier(tok)...)
		} else {
			expanded = append(expanded, tok)
		}
	}

	out := make([]string, 0, len(expanded))
	for _, tok := range expanded {
		if utf8.RuneCountInString(tok) > 1 || !isASCIIRune(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func isASCIIRune(s string) bool {
	if s == "" {
		return true
	}
	return s[0] < 0x80
}
