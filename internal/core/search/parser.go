// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	"regexp"
	"strings"

	"github.com/buivan/fedisearch/internal/index"
	"github.com/buivan/fedisearch/pkg/pointer"
)

// Filter patterns. Each one requires a preceding space so that a word
// merely ending in a label, like "reinstance:", never matches.
var (
	instancePattern  = regexp.MustCompile(` instance:((https://)?[\w\-\.]+)`)
	communityPattern = regexp.MustCompile(` community:(!\w+@[\w\-\.]+)`)
	authorPattern    = regexp.MustCompile(` author:(@\w+@[\w\-\.]+)`)

	// User-facing handle formats, converted to actor IDs.
	communityFormat = regexp.MustCompile(`!(\w+)@([\w\-\.]+)`)
	authorFormat    = regexp.MustCompile(`@(\w+)@([\w\-\.]+)`)
)

// Parsed is the outcome of filter extraction on one raw query string.
type Parsed struct {
	// Text is the residual query, lowercased and trimmed.
	Text string

	// Terms are the analyzer tokens of Text.
	Terms []string

	// Canonical actor IDs, nil when the filter was absent.
	Instance  *string
	Community *string
	Author    *string
}

/*
Parse extracts the supported filters from a raw query string.

Each filter is written by the user in handle form and canonicalized to the
actor ID the index stores:

  - "instance:example.org" (or "instance:https://example.org") becomes
    "https://example.org/"
  - "community:!rust@example.org" becomes "https://example.org/c/rust"
  - "author:@ada@example.org" becomes "https://example.org/u/ada"

Matched filters are stripped from the query; what remains is lowercased,
trimmed, and tokenized with the same rules that indexed the posts.
*/
func Parse(raw string) Parsed {
	residual := raw

	var instance, community, author *string

	// 1. Instance filter: a bare or https-prefixed hostname
	if match := instancePattern.FindStringSubmatch(residual); match != nil {
		residual = strings.Replace(residual, match[0], " ", 1)

		host := strings.TrimPrefix(strings.ToLower(match[1]), "https://")
		instance = pointer.To("https://" + host + "/")
	}

	// 2. Community filter: !name@host
	if match := communityPattern.FindStringSubmatch(residual); match != nil {
		residual = strings.Replace(residual, match[0], " ", 1)

		if parts := communityFormat.FindStringSubmatch(strings.ToLower(match[1])); parts != nil {
			community = pointer.To("https://" + parts[2] + "/c/" + parts[1])
		}
	}

	// 3. Author filter: @name@host
	if match := authorPattern.FindStringSubmatch(residual); match != nil {
		residual = strings.Replace(residual, match[0], " ", 1)

		if parts := authorFormat.FindStringSubmatch(strings.ToLower(match[1])); parts != nil {
			author = pointer.To("https://" + parts[2] + "/u/" + parts[1])
		}
	}

	text := strings.TrimSpace(strings.ToLower(residual))

	return Parsed{
		Text:      text,
		Terms:     index.Tokenize(text),
		Instance:  instance,
		Community: community,
		Author:    author,
	}
}
