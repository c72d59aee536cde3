// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package index

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/buivan/fedisearch/pkg/slice"
)

// minTokenRunes is the shortest token worth indexing.
const minTokenRunes = 3

// Analyze extracts the distinct index terms from a post's title and body.
func Analyze(name, body string) []string {
	return Tokenize(name + " " + body)
}

/*
Tokenize applies the analyzer rules to one block of text.

The text is NFC-normalized and lowercased, every character that is neither
alphanumeric nor whitespace becomes a space, and the remainder is split on
whitespace. Tokens shorter than three runes are dropped and duplicates are
removed preserving first occurrence.

The same rules run on both sides of the index: posts at ingest time and the
residual query text at search time, so dictionary lookups always match.
*/
func Tokenize(text string) []string {
	normalized := strings.ToLower(norm.NFC.String(text))

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, normalized)

	var tokens []string
	for _, token := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(token) >= minTokenRunes {
			tokens = append(tokens, token)
		}
	}

	return slice.Unique(tokens)
}
