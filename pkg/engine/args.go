package engine

import (
	"fmt"
	"math"
	"slices"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/noisegraph/pkg/expr"
)

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	return strings.CutPrefix(str.S, kwPrefix)
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A
// keyword is only treated as a key when it is followed by a value;
// otherwise it is positional (used for enum selectors such as :perlin).
func parseArgs(args []zygo.Sexp, keys []string) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		if name, ok := isKW(args[i]); ok && slices.Contains(keys, name) && i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
			continue
		}
		result.positional = append(result.positional, args[i])
	}
	return result
}

// arg returns positional argument i, or the null sentinel when absent.
func (pa kwArgs) arg(i int) zygo.Sexp {
	if i < len(pa.positional) {
		return pa.positional[i]
	}
	return zygo.SexpNull
}

// rest returns the positional arguments from i on.
func (pa kwArgs) rest(i int) []zygo.Sexp {
	if i < len(pa.positional) {
		return pa.positional[i:]
	}
	return nil
}

// require fails when fewer than n positional arguments were given.
func (pa kwArgs) require(n int, usage string) error {
	if len(pa.positional) < n {
		return fmt.Errorf("expected %s, got %d argument(s)", usage, len(pa.positional))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func isNull(s zygo.Sexp) bool {
	return s == zygo.SexpNull
}

func describe(s zygo.Sexp) string {
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

// toUint32 extracts a non-negative integer that fits in 32 bits.
func toUint32(s zygo.Sexp) (uint32, error) {
	v, ok := s.(*zygo.SexpInt)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %s", describe(s))
	}
	if v.Val < 0 || v.Val > math.MaxUint32 {
		return 0, fmt.Errorf("integer %d out of u32 range", v.Val)
	}
	return uint32(v.Val), nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", describe(s))
}

// toBool extracts a boolean from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %s", describe(s))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_fbm) and plain strings ("fbm").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %s", describe(s))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toEnum resolves a keyword against the String forms of values.
func toEnum[E fmt.Stringer](s zygo.Sexp, values []E) (E, error) {
	var zero E
	name, err := toKeywordString(s)
	if err != nil {
		return zero, err
	}
	v, ok := expr.Parse(name, values)
	if !ok {
		names := make([]string, len(values))
		for i, v := range values {
			names[i] = ":" + v.String()
		}
		return zero, fmt.Errorf("unknown %q, expected one of %s", name, strings.Join(names, " "))
	}
	return v, nil
}
