package survey

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Format specs follow the familiar "[,][.precision]type" mini-language:
// f/F fixed point, % percentage, e/E exponent, g/G general.
var formatSpec = regexp.MustCompile(`^(,)?(?:\.(\d+))?([fF%eEgG])$`)

const defaultPrecision = 6

type numberFormat struct {
	grouping  bool
	precision int
	verb      byte
}

func parseFormat(spec string) (numberFormat, error) {
	m := formatSpec.FindStringSubmatch(spec)
	if m == nil {
		return numberFormat{}, fmt.Errorf("%w: %q", ErrInvalidFormat, spec)
	}

	f := numberFormat{grouping: m[1] == ",", precision: defaultPrecision, verb: m[3][0]}
	if m[2] != "" {
		p, err := strconv.Atoi(m[2])
		if err != nil || p > 50 {
			return numberFormat{}, fmt.Errorf("%w: precision in %q", ErrInvalidFormat, spec)
		}
		f.precision = p
	}
	return f, nil
}

// ValidateFormat reports whether spec is a supported number format
func ValidateFormat(spec string) error {
	_, err := parseFormat(spec)
	return err
}

// FormatValue renders v according to spec, e.g. FormatValue(0.5, ".0%") is "50%"
func FormatValue(v float64, spec string) (string, error) {
	f, err := parseFormat(spec)
	if err != nil {
		return "", err
	}
	return f.format(v), nil
}

func (f numberFormat) format(v float64) string {
	suffix := ""
	if f.verb == '%' {
		v *= 100
		suffix = "%"
	}

	var s string
	switch {
	case math.IsNaN(v):
		s = "nan"
	case math.IsInf(v, 1):
		s = "inf"
	case math.IsInf(v, -1):
		s = "-inf"
	default:
		s = f.digits(v)
	}
	if f.verb == 'F' || f.verb == 'E' || f.verb == 'G' {
		s = strings.ToUpper(s)
	}
	return s + suffix
}

func (f numberFormat) digits(v float64) string {
	var s string
	switch f.verb {
	case 'e', 'E':
		s = strconv.FormatFloat(v, 'e', f.precision, 64)
	case 'g', 'G':
		p := f.precision
		if p == 0 {
			p = 1
		}
		s = strconv.FormatFloat(v, 'g', p, 64)
	default:
		s = strconv.FormatFloat(v, 'f', f.precision, 64)
	}
	if f.grouping {
		s = groupThousands(s)
	}
	return s
}

// groupThousands inserts commas into the integer part of a decimal string
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, rest := s, ""
	if i := strings.IndexAny(s, ".e"); i >= 0 {
		intPart, rest = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + s
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + rest
}

// formatPercent renders n/d, or the placeholder when d is zero
func formatPercent(n, d int, f numberFormat) string {
	if d == 0 {
		return Placeholder
	}
	return f.format(float64(n) / float64(d))
}

// formatMean renders a mean, or the placeholder when it is undefined
func formatMean(v float64, f numberFormat) string {
	if math.IsNaN(v) {
		return Placeholder
	}
	return f.format(v)
}
