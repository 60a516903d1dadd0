// internal/notify/interpolate.go
package notify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// tokenPattern matches {identifier} placeholders where identifier may contain
// dots for nested lookups, e.g. {user.name}.
var tokenPattern = regexp.MustCompile(`\{([A-Za-z0-9_.]+)\}`)

// Interpolate substitutes {identifier} tokens in template with values from
// variables. Dot-separated segments index progressively into nested maps.
// A token whose path is missing, or whose terminal value is not a scalar,
// is left verbatim so malformed templates degrade to visible placeholders
// instead of failing the send.
func Interpolate(template string, variables map[string]any) string {
	if template == "" || !strings.Contains(template, "{") {
		return template
	}

	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		path := token[1 : len(token)-1]
		value, ok := resolvePath(variables, strings.Split(path, "."))
		if !ok {
			return token
		}
		return value
	})
}

// resolvePath walks segments through nested maps and stringifies the terminal
// value when it is a scalar.
func resolvePath(variables map[string]any, segments []string) (string, bool) {
	var current any = variables
	for _, segment := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current, ok = m[segment]
		if !ok {
			return "", false
		}
	}
	return formatScalar(current)
}

func formatScalar(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	}
	return "", false
}
