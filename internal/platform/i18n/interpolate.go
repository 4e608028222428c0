package i18n

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_.\-]+)\}`)

// interpolate substitutes {name} placeholders in tmpl. Values from primary
// win over values from secondary; placeholders with no value are kept as-is.
func interpolate(tmpl string, primary, secondary map[string]string) string {
	if !strings.ContainsRune(tmpl, '{') || (len(primary) == 0 && len(secondary) == 0) {
		return tmpl
	}

	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[1 : len(match)-1]

		if v, ok := primary[name]; ok {
			return v
		}

		if v, ok := secondary[name]; ok {
			return v
		}

		return match
	})
}
