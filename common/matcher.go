package common

import (
	"fmt"
	"strings"

	"github.com/IGLOU-EU/go-wildcard/v2"
)

// WildcardMatch reports whether value matches pattern. A pattern is a set of
// go-wildcard globs joined with "|" (any alternative) and "&" (every term of
// an alternative); a leading "!" negates a single glob.
//
//	"*"                  every value
//	"homestead|goerli"   either network
//	"*&!cloudflare"      everything but cloudflare
func WildcardMatch(pattern, value string) (bool, error) {
	if err := ValidatePattern(pattern); err != nil {
		return false, err
	}
	for _, alt := range strings.Split(pattern, "|") {
		if matchAll(alt, value) {
			return true, nil
		}
	}
	return false, nil
}

func matchAll(alt, value string) bool {
	for _, term := range strings.Split(alt, "&") {
		glob, negate := parseTerm(term)
		if wildcard.Match(glob, value) == negate {
			return false
		}
	}
	return true
}

func parseTerm(term string) (string, bool) {
	term = strings.TrimSpace(term)
	if strings.HasPrefix(term, "!") {
		return strings.TrimSpace(term[1:]), true
	}
	return term, false
}

// ValidatePattern rejects empty patterns and empty terms.
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("empty pattern")
	}
	for _, alt := range strings.Split(pattern, "|") {
		for _, term := range strings.Split(alt, "&") {
			if glob, _ := parseTerm(term); glob == "" {
				return fmt.Errorf("pattern %q has an empty term", pattern)
			}
		}
	}
	return nil
}
