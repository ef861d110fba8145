package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oliveagle/jsonpath"
)

var tokenPattern = regexp.MustCompile("{(.*?)}")

// ResolveText replaces every {$.path} token in text with the value found at
// that jsonpath in data. Tokens that do not resolve are left untouched.
func ResolveText(data map[string]any, text string) string {
	tokenMap := make(map[string]any)
	tokens := tokenPattern.FindAllString(text, -1)
	for _, token := range tokens {
		tmatch := TrimBraces(token)
		if !strings.HasPrefix(tmatch, "$") {
			continue
		}
		value, err := jsonpath.JsonPathLookup(data, tmatch)
		if err != nil {
			continue
		}
		tokenMap[token] = value
	}
	for t, tv := range tokenMap {
		text = strings.ReplaceAll(text, t, fmt.Sprintf("%v", tv))
	}
	return text
}

// ResolveParams resolves tokens in every string of params, recursing into
// nested maps and lists.
func ResolveParams(data map[string]any, params map[string]any) map[string]any {
	output := make(map[string]any, len(params))
	for k, v := range params {
		output[k] = resolveValue(data, v)
	}
	return output
}

func resolveValue(data map[string]any, v any) any {
	switch val := v.(type) {
	case map[string]any:
		return ResolveParams(data, val)
	case string:
		return ResolveText(data, val)
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, resolveValue(data, item))
		}
		return out
	default:
		return v
	}
}

func TrimBraces(expression string) string {
	expression = strings.ReplaceAll(expression, "{", "")
	return strings.ReplaceAll(expression, "}", "")
}
