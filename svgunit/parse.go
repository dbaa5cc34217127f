package svgunit

import (
	"fmt"
	"strconv"
	"strings"
)

var unitSuffixes = [...]struct {
	suffix string
	unit   Unit
}{
	{"px", Pixel},
	{"em", Em},
	{"ex", Ex},
	{"cm", Centimeter},
	{"mm", Millimeter},
	{"in", Inch},
	{"pt", Point},
	{"pc", Pica},
	{"%", Percent},
}

// Parse parses a length such as "12", "1.5em" or "50%".
func Parse(s string) (Length, error) {
	s = strings.TrimSpace(s)
	unit := None
	for _, u := range unitSuffixes {
		if strings.HasSuffix(s, u.suffix) {
			s, unit = strings.TrimSpace(strings.TrimSuffix(s, u.suffix)), u.unit
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: %w", s, err)
	}
	return Length{Value: v, Unit: unit}, nil
}

// ParseList parses a list of lengths separated by commas or spaces.
func ParseList(s string) (List, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make(List, 0, len(fields))
	for _, f := range fields {
		l, err := Parse(f)
		if err != nil {
			return out, err
		}
		out = append(out, l)
	}
	return out, nil
}
