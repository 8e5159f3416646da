package feed

import (
	"cmp"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run marks every item that fails the rules. Items are never dropped here.
func (f *Filterer) Run(items []Item, rules *Rules) []Item {
	filtered := make([]Item, 0, len(items))

	for _, item := range items {
		accepted, reason := f.Classify(item, rules)
		item.IsFiltered = !accepted
		item.FilterReason = reason
		filtered = append(filtered, item)
	}

	return filtered
}

// Classify accepts an item iff its text contains a keyword from any required group
// and no blacklisted keyword. The blacklist is checked first and always wins.
func (f *Filterer) Classify(item Item, rules *Rules) (bool, string) {
	fullText := f.normalize(item.Title+" "+cmp.Or(item.Snippet, item.Content), rules.FoldAccents)

	for _, blocked := range rules.Blacklist {
		if f.matchesFilter(fullText, blocked, rules.FoldAccents) {
			return false, fmt.Sprintf("Excluded by blacklist: contains '%s'", blocked)
		}
	}

	for _, group := range rules.RequireAny {
		for _, keyword := range group.Keywords {
			if f.matchesFilter(fullText, keyword, rules.FoldAccents) {
				return true, ""
			}
		}
	}

	return false, "Excluded: does not contain any required topic keyword"
}

func (f *Filterer) matchesFilter(normalizedText, pattern string, foldAccents bool) bool {
	pattern = f.normalize(pattern, foldAccents)
	if pattern == "" {
		return false
	}
	return strings.Contains(normalizedText, pattern)
}

func (f *Filterer) normalize(value string, foldAccents bool) string {
	value = strings.ToLower(value)
	if !foldAccents {
		return value
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}
