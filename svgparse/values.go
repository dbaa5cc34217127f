package svgparse

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgrender"
	"github.com/benoitkugler/svgrender/svgunit"
)

var errParamMismatch = errors.New("param mismatch")

func parseFloat(v string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(v), 64)
}

// parseFraction accepts numbers and percentages, returning a fraction.
func parseFraction(v string) (float64, error) {
	v = strings.TrimSpace(v)
	d := 1.
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err := parseFloat(v)
	return f / d, err
}

// parseOpacity returns a fraction clamped to [0, 1].
func parseOpacity(v string) (float64, error) {
	f, err := parseFraction(v)
	if err != nil {
		return 0, err
	}
	return math.Max(0, math.Min(1, f)), nil
}

func setLength(dst *svgunit.Length, v string) error {
	l, err := svgunit.Parse(v)
	if err != nil {
		return err
	}
	*dst = l
	return nil
}

func parseOptLength(v string) (*svgunit.Length, error) {
	l, err := svgunit.Parse(v)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// parseViewBox parses the four numbers of a viewBox.
// Negative sizes are an error.
func parseViewBox(v string) (svgpath.Rect, error) {
	nums, err := svgpath.ParseNumbers(v)
	if err != nil {
		return svgpath.Rect{}, err
	}
	if len(nums) != 4 {
		return svgpath.Rect{}, errParamMismatch
	}
	if nums[2] < 0 || nums[3] < 0 {
		return svgpath.Rect{}, fmt.Errorf("negative viewBox size in %q", v)
	}
	return svgpath.Rect{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}, nil
}

var aligns = map[string]svgrender.Align{
	"min": svgrender.AlignMin,
	"mid": svgrender.AlignMid,
	"max": svgrender.AlignMax,
}

// parseAspectRatio parses a preserveAspectRatio attribute,
// such as "xMinYMax slice".
func parseAspectRatio(v string) (svgrender.AspectRatio, error) {
	var out svgrender.AspectRatio
	fields := strings.Fields(v)
	if len(fields) > 0 && fields[0] == "defer" {
		fields = fields[1:]
	}
	if len(fields) == 0 || len(fields) > 2 {
		return out, errParamMismatch
	}
	align := fields[0]
	if align == "none" {
		out.None = true
	} else {
		if len(align) != 8 || align[0] != 'x' || align[4] != 'Y' {
			return out, fmt.Errorf("invalid alignment %q", align)
		}
		var okX, okY bool
		out.X, okX = aligns[strings.ToLower(align[1:4])]
		out.Y, okY = aligns[strings.ToLower(align[5:8])]
		if !okX || !okY {
			return out, fmt.Errorf("invalid alignment %q", align)
		}
	}
	if len(fields) == 2 {
		switch fields[1] {
		case "meet":
		case "slice":
			out.Slice = true
		default:
			return out, fmt.Errorf("invalid meetOrSlice %q", fields[1])
		}
	}
	return out, nil
}

func parseUnits(v string) (svgrender.Units, error) {
	switch strings.TrimSpace(v) {
	case "objectBoundingBox":
		return svgrender.ObjectBoundingBox, nil
	case "userSpaceOnUse":
		return svgrender.UserSpaceOnUse, nil
	case "strokeWidth":
		return svgrender.StrokeWidth, nil
	}
	return 0, fmt.Errorf("invalid units %q", v)
}

func parseSpread(v string) (svgrender.Spread, error) {
	switch strings.TrimSpace(v) {
	case "pad":
		return svgrender.PadSpread, nil
	case "reflect":
		return svgrender.ReflectSpread, nil
	case "repeat":
		return svgrender.RepeatSpread, nil
	}
	return 0, fmt.Errorf("invalid spread method %q", v)
}

// parseAngle parses an angle in degrees, with an optional unit.
func parseAngle(v string) (float64, error) {
	v = strings.TrimSpace(v)
	scale := 1.
	switch {
	case strings.HasSuffix(v, "deg"):
		v = strings.TrimSuffix(v, "deg")
	case strings.HasSuffix(v, "grad"):
		v, scale = strings.TrimSuffix(v, "grad"), 0.9
	case strings.HasSuffix(v, "rad"):
		v, scale = strings.TrimSuffix(v, "rad"), 180/math.Pi
	case strings.HasSuffix(v, "turn"):
		v, scale = strings.TrimSuffix(v, "turn"), 360
	}
	f, err := parseFloat(v)
	return f * scale, err
}

func parseOrient(v string) (svgrender.Orient, error) {
	switch v = strings.TrimSpace(v); v {
	case "auto":
		return svgrender.Orient{Auto: true}, nil
	case "auto-start-reverse":
		return svgrender.Orient{Auto: true, AutoStartReverse: true}, nil
	}
	angle, err := parseAngle(v)
	return svgrender.Orient{Angle: angle}, err
}

// parseColorHex reads the SVG color string e.g. #FBD9BD or #FFF
func parseColorHex(colorStr string) (c color.NRGBA, err error) {
	colorStr = strings.TrimPrefix(colorStr, "#")
	switch len(colorStr) {
	case 3:
		// duplicate characters in case of 3 digit hex number
		colorStr = string([]byte{colorStr[0], colorStr[0],
			colorStr[1], colorStr[1], colorStr[2], colorStr[2]})
	case 6:
	default:
		return c, fmt.Errorf("invalid hex color %q", colorStr)
	}
	var t uint64
	for _, v := range []struct {
		c *uint8
		s string
	}{
		{&c.R, colorStr[0:2]},
		{&c.G, colorStr[2:4]},
		{&c.B, colorStr[4:6]},
	} {
		t, err = strconv.ParseUint(v.s, 16, 8)
		if err != nil {
			return c, err
		}
		*v.c = uint8(t)
	}
	c.A = 0xff
	return c, nil
}

// parseColorValue reads one channel of a rgb() color
func parseColorValue(v string) (uint8, error) {
	v = strings.TrimSpace(v)
	var f float64
	var err error
	if strings.HasSuffix(v, "%") {
		f, err = parseFloat(strings.TrimSuffix(v, "%"))
		f = f * 0xff / 100
	} else {
		f, err = parseFloat(v)
	}
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(math.Max(0, math.Min(0xff, f)))), nil
}

// ParseColor parses an SVG color string in all forms
// including all SVG1.1 names, obtained from the colornames package
func ParseColor(colorStr string) (color.NRGBA, error) {
	colorStr = strings.TrimSpace(colorStr)
	v := strings.ToLower(colorStr)
	if v == "transparent" {
		return color.NRGBA{}, nil
	}
	if cn, ok := colornames.Map[v]; ok {
		return color.NRGBA(cn), nil
	}
	if strings.HasPrefix(v, "#") {
		return parseColorHex(v)
	}
	for _, fn := range [...]string{"rgba(", "rgb("} {
		if !strings.HasPrefix(v, fn) || !strings.HasSuffix(v, ")") {
			continue
		}
		vals := strings.Split(v[len(fn):len(v)-1], ",")
		if len(vals) != 3 && len(vals) != 4 {
			return color.NRGBA{}, errParamMismatch
		}
		out := color.NRGBA{A: 0xff}
		for i, ch := range []*uint8{&out.R, &out.G, &out.B} {
			var err error
			if *ch, err = parseColorValue(vals[i]); err != nil {
				return color.NRGBA{}, err
			}
		}
		if len(vals) == 4 {
			alpha, err := parseOpacity(vals[3])
			if err != nil {
				return color.NRGBA{}, err
			}
			out.A = uint8(math.Round(alpha * 0xff))
		}
		return out, nil
	}
	return color.NRGBA{}, fmt.Errorf("invalid color %q", colorStr)
}

// parseIRI returns the id of a "url(#id)" reference,
// and the rest of the value.
func parseIRI(v string) (id, rest string, ok bool) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "url(") {
		return "", v, false
	}
	end := strings.IndexByte(v, ')')
	if end == -1 {
		return "", v, false
	}
	id = strings.Trim(strings.TrimSpace(v[4:end]), `"'`)
	return strings.TrimPrefix(id, "#"), strings.TrimSpace(v[end+1:]), true
}

// parsePaint parses a fill or stroke value.
func parsePaint(v string) (svgrender.PaintServer, error) {
	v = strings.TrimSpace(v)
	if id, rest, ok := parseIRI(v); ok {
		out := svgrender.Deferred{ID: id}
		if rest != "" {
			fallback, err := parsePaint(rest)
			if err != nil {
				return nil, err
			}
			out.Fallback = fallback
		}
		return out, nil
	}
	switch v {
	case "none":
		return svgrender.None, nil
	case "inherit":
		return svgrender.Inherit, nil
	case "currentColor", "currentcolor":
		return svgrender.CurrentColor{}, nil
	}
	c, err := ParseColor(v)
	if err != nil {
		return nil, err
	}
	return svgrender.Color(c), nil
}

// parseReference returns the id of a "url(#id)" property,
// or an empty string for "none".
func parseReference(v string) (string, error) {
	if strings.TrimSpace(v) == "none" {
		return "", nil
	}
	id, _, ok := parseIRI(v)
	if !ok {
		return "", fmt.Errorf("invalid reference %q", v)
	}
	return id, nil
}

// parseHref accepts "#id" local references only.
func parseHref(v string) (string, error) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "#") {
		return "", fmt.Errorf("only local references are supported, got %q", v)
	}
	return v[1:], nil
}
