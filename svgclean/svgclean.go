// Implements a text level filter removing style rules which force
// animation timings to zero, as found in some hosted SVG files.
//
// The filter works on the raw markup (no re-serialization), so that content
// without such rules is returned byte for byte.
package svgclean

import (
	"time"

	"github.com/dlclark/regexp2"
)

// zeroTime matches a zero time value such as 0, 0s, 0.0ms or -.0s,
// but not 0.5s, 10s or 0%.
const zeroTime = `(?<![\w.])[+-]?(?:0+(?:\.0*)?|\.0+)(?:m?s)?(?![\w.%])`

// zeroDuration is zeroTime with a mandatory unit, used inside shorthands
// where a bare 0 may be an iteration count.
const zeroDuration = `(?<![\w.])[+-]?(?:0+(?:\.0*)?|\.0+)m?s(?![\w.%])`

// timingProperty matches (possibly vendor prefixed) animation-duration
// and animation-delay declarations set to zero.
const timingProperty = `(?<![\w-])(?:-[a-z]+-)?animation-(?:duration|delay)\s*:\s*` + zeroTime

// universalSelector matches `*`, `*::before`, `*, *::after`...
// It must start a rule: compound selectors such as `svg *` or `.a, *`
// are left to the declaration rules.
const universalSelector = `(?<=(?:^|[{};]|\*/|<style[^<>]*>|<!\[CDATA\[)\s*)\*(?:::?[\w-]+)*(?:\s*,\s*\*(?:::?[\w-]+)*)*`

// matchTimeout bounds the time spent on a single rule.
const matchTimeout = 2 * time.Second

var rules = []*regexp2.Regexp{
	// a whole block selecting every element
	mustCompile(universalSelector + `\s*\{[^{}]*?` + timingProperty + `[^{}]*\}`),
	// remaining standalone declarations
	mustCompile(timingProperty + `[^;}"']*;?`),
	// shorthand with a zero duration
	mustCompile(`(?<![\w-])(?:-[a-z]+-)?animation\s*:[^;{}"']*?` + zeroDuration + `[^;{}"']*;?`),
}

func mustCompile(expr string) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, regexp2.IgnoreCase)
	re.MatchTimeout = matchTimeout
	return re
}

// Sanitize removes the animation overrides from `markup`.
// It never fails: if a rule can't be applied, `markup` is returned unchanged.
// Applying Sanitize to its output is a no-op.
func Sanitize(markup string) string {
	out := markup
	for {
		next, err := applyRules(out)
		if err != nil {
			return markup
		}
		if next == out {
			return out
		}
		out = next
	}
}

// applyRules applies every rule once, in order.
func applyRules(s string) (string, error) {
	for _, re := range rules {
		var err error
		s, err = re.Replace(s, "", -1, -1)
		if err != nil {
			return "", err
		}
	}
	return s, nil
}
