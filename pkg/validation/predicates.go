package validation

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/tmcc-dev/designform/pkg/rates"
)

// shareMarker is left behind by share buttons ("?si=...") and must be
// trimmed before a link is stored.
const shareMarker = "?si="

var (
	variantVersionPattern = regexp.MustCompile(`(?i)^(Java|Bedrock)\s+1\.\d+(\+|-1\.\d+)?$`)

	lowercaseArticles = map[string]struct{}{
		"a": {}, "an": {}, "the": {}, "of": {}, "in": {}, "on": {}, "at": {}, "to": {},
	}
)

// IsDropNameCapitalized reports whether every space separated word starts
// with an uppercase letter, except the articles a/an/the/of/in/on/at/to which
// must start lowercase. The first word is always capitalised, article or
// not ("The End Stone" passes, "Bottle Of Enchanting" does not).
func IsDropNameCapitalized(value string) bool {
	if value == "" {
		return true
	}
	for i, word := range strings.Split(value, " ") {
		if i == 0 {
			if !startsUpper(word) {
				return false
			}
			continue
		}
		if _, article := lowercaseArticles[strings.ToLower(word)]; article {
			if !startsLower(word) {
				return false
			}
			continue
		}
		if !startsUpper(word) {
			return false
		}
	}
	return true
}

// IsVariantName accepts "Default", a platform/version qualifier such as
// "Java 1.19+", "bedrock 1.18-1.20", or an all-lowercase condition like
// "with 10 bees".
func IsVariantName(value string) bool {
	if value == "Default" {
		return true
	}
	if variantVersionPattern.MatchString(value) {
		return true
	}
	return value == strings.ToLower(value)
}

// IsLowercase reports whether value contains no uppercase letters. Empty
// values pass.
func IsLowercase(value string) bool {
	return value == strings.ToLower(value)
}

// IsContributionList validates a comma separated list such as
// "Main design, Color scheme". Each entry must start with an uppercase
// letter, continue in lowercase and not end with a period. Empty values
// pass.
func IsContributionList(value string) bool {
	if value == "" {
		return true
	}
	for _, part := range strings.Split(value, ",") {
		entry := strings.TrimSpace(part)
		if entry == "" {
			return false
		}
		if !startsUpper(entry) {
			return false
		}
		rest := entry[1:]
		if rest != strings.ToLower(rest) {
			return false
		}
		if strings.HasSuffix(entry, ".") {
			return false
		}
	}
	return true
}

// IsShareURL reports whether value is an absolute URL without "?si="
// tracking metadata. Empty values pass.
func IsShareURL(value string) bool {
	if value == "" {
		return true
	}
	if strings.Contains(value, shareMarker) {
		return false
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	if parsed.Scheme == "" {
		return false
	}
	return parsed.Host != "" || parsed.Opaque != ""
}

// IsPositiveNumber reports whether value starts with a number greater than
// zero ("93360", "2.5/min").
func IsPositiveNumber(value string) bool {
	number, ok := rates.ParseLeadingFloat(value)
	return ok && number > 0
}

func startsUpper(word string) bool {
	return word != "" && word[0] >= 'A' && word[0] <= 'Z'
}

func startsLower(word string) bool {
	return word != "" && word[0] >= 'a' && word[0] <= 'z'
}
