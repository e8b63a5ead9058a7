package rules

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

// Parameter resolution is best-effort extraction, not parsing: the
// structured parameter map wins, then a fixed table of keyword/regex
// heuristics runs against the free-text answer, then the default.
// Ambiguous text yields the default.

var (
	hoursPattern   = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*h(?:ours?|rs?)?\b`)
	percentPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%`)
	daysPattern    = regexp.MustCompile(`(?i)(\d+)\s*(?:consecutive\s+|calendar\s+)?days?\b`)
	factorPattern  = regexp.MustCompile(`(?i)(?:factor|multiplier)\s*(?:of\s*)?(\d+(?:[.,]\d+)?)`)
	numberPattern  = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

type textExtractor struct {
	keys    []string
	extract func(answer string) (float64, bool)
}

func firstMatch(re *regexp.Regexp) func(string) (float64, bool) {
	return func(answer string) (float64, bool) {
		m := re.FindStringSubmatch(answer)
		if m == nil {
			return 0, false
		}
		return parseNumber(m[1])
	}
}

// loneNumber extracts a bare numeric token, but only when the text
// contains exactly one: two numbers with no unit is ambiguous.
func loneNumber(answer string) (float64, bool) {
	matches := numberPattern.FindAllString(answer, 2)
	if len(matches) != 1 {
		return 0, false
	}
	return parseNumber(matches[0])
}

// textExtractors is the ordered strategy table. The first entry whose
// key set contains the requested key and whose pattern matches wins.
var textExtractors = []textExtractor{
	{
		keys: []string{
			KeyMaxWeeklyHours,
			KeyMaxDailyHours,
			KeyMinRestHours,
			KeyAdvanceNoticeHours,
		},
		extract: firstMatch(hoursPattern),
	},
	{
		keys:    []string{KeyBufferPercent},
		extract: firstMatch(percentPattern),
	},
	{
		keys: []string{KeyUtilizationTarget},
		extract: func(answer string) (float64, bool) {
			if v, ok := firstMatch(percentPattern)(answer); ok {
				return v / 100, true
			}
			if v, ok := loneNumber(answer); ok && v <= 1 {
				return v, true
			}
			return 0, false
		},
	},
	{
		keys:    []string{KeyHolidayFactor},
		extract: firstMatch(factorPattern),
	},
	{
		keys: []string{
			KeyMaxConsecutiveDays,
			KeyMaxDaysWithoutFullWeekOff,
		},
		extract: firstMatch(daysPattern),
	},
	{
		keys: []string{
			KeyMaxWeeklyHours,
			KeyMaxDailyHours,
			KeyMinRestHours,
			KeyAdvanceNoticeHours,
			KeyMaxConsecutiveDays,
		},
		extract: loneNumber,
	},
}

// DeclaredParameter resolves key only when the rule names it in its
// structured parameter map. The text heuristics still run when the
// declared value is not numeric, but never for undeclared keys: a rule
// answering "11 hours" must not rewrite every hour-valued key.
func DeclaredParameter(rule *domain.Rule, key string) (float64, bool) {
	if _, declared := rule.Parameters[key]; !declared {
		return 0, false
	}
	return resolveParameter(rule, key)
}

// ResolveParameter resolves key against the rule, falling back to def.
func ResolveParameter(rule *domain.Rule, key string, def float64) float64 {
	if v, ok := resolveParameter(rule, key); ok {
		return v
	}
	return def
}

func resolveParameter(rule *domain.Rule, key string) (float64, bool) {
	if raw, exists := rule.Parameters[key]; exists {
		if v, ok := coerceNumeric(raw); ok {
			return v, true
		}
	}

	for _, ex := range textExtractors {
		if !slices.Contains(ex.keys, key) {
			continue
		}
		if v, ok := ex.extract(rule.Answer); ok {
			return v, true
		}
	}

	return 0, false
}

func coerceNumeric(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		return parseNumber(v)
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
