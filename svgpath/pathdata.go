package svgpath

import (
	"errors"
	"strconv"
)

var errBadNumber = errors.New("invalid number")

// numberScanner reads numbers from a path data string,
// where separators are optional ("1-2.5.5" is [1 -2.5 .5]).
type numberScanner struct {
	src string
	pos int
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' }

func (s *numberScanner) skipSeparators() {
	for s.pos < len(s.src) && (isSpace(s.src[s.pos]) || s.src[s.pos] == ',') {
		s.pos++
	}
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// startsNumber returns true if the next token is a number.
func (s *numberScanner) startsNumber() bool {
	s.skipSeparators()
	if s.pos >= len(s.src) {
		return false
	}
	c := s.src[s.pos]
	return isDigit(c) || c == '-' || c == '+' || c == '.'
}

func (s *numberScanner) number() (float64, error) {
	s.skipSeparators()
	start := s.pos
	if s.pos < len(s.src) && (s.src[s.pos] == '-' || s.src[s.pos] == '+') {
		s.pos++
	}
	seenDot, seenDigit := false, false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isDigit(c) {
			seenDigit = true
		} else if c == '.' && !seenDot {
			seenDot = true
		} else {
			break
		}
		s.pos++
	}
	if !seenDigit {
		return 0, errBadNumber
	}
	// exponent, only if followed by digits
	if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		e := s.pos + 1
		if e < len(s.src) && (s.src[e] == '-' || s.src[e] == '+') {
			e++
		}
		if e < len(s.src) && isDigit(s.src[e]) {
			for e < len(s.src) && isDigit(s.src[e]) {
				e++
			}
			s.pos = e
		}
	}
	return strconv.ParseFloat(s.src[start:s.pos], 64)
}

// flag reads an arc flag, which may be written without separator.
func (s *numberScanner) flag() (bool, error) {
	s.skipSeparators()
	if s.pos >= len(s.src) {
		return false, errBadNumber
	}
	switch s.src[s.pos] {
	case '0':
		s.pos++
		return false, nil
	case '1':
		s.pos++
		return true, nil
	}
	return false, errBadNumber
}

func (s *numberScanner) point() (Point, error) {
	x, err := s.number()
	if err != nil {
		return Point{}, err
	}
	y, err := s.number()
	return Point{x, y}, err
}

// ParseNumbers parses a list of numbers separated by commas or spaces.
func ParseNumbers(v string) ([]float64, error) {
	s := numberScanner{src: v}
	var out []float64
	for s.startsNumber() {
		f, err := s.number()
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
	s.skipSeparators()
	if s.pos != len(s.src) {
		return out, errBadNumber
	}
	return out, nil
}

// ParsePoints parses a list of coordinates pairs, as found in
// the `points` attribute of polygons. A trailing odd coordinate is dropped.
func ParsePoints(v string) []Point {
	nums, _ := ParseNumbers(v)
	out := make([]Point, 0, len(nums)/2)
	for i := 0; i+1 < len(nums); i += 2 {
		out = append(out, Point{nums[i], nums[i+1]})
	}
	return out
}

// ParsePathData parses the `d` attribute of a path.
// Parsing is best effort : on the first malformed command,
// the segments successfully read so far are returned, with an error.
func ParsePathData(d string) ([]Segment, error) {
	s := numberScanner{src: d}
	var (
		out []Segment
		cmd byte
	)
	for {
		s.skipSeparators()
		if s.pos >= len(s.src) {
			return out, nil
		}
		c := s.src[s.pos]
		if isCommand(c) {
			cmd = c
			s.pos++
		} else if cmd == 0 || !s.startsNumber() {
			return out, errors.New("invalid path data")
		} else if cmd == 'M' {
			cmd = 'L' // implicit lineto after a moveto
		} else if cmd == 'm' {
			cmd = 'l'
		} else if cmd == 'Z' || cmd == 'z' {
			return out, errors.New("invalid path data")
		}
		seg, err := readSegment(&s, cmd)
		if err != nil {
			return out, err
		}
		out = append(out, seg)
	}
}

func isCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's', 'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

func readSegment(s *numberScanner, cmd byte) (Segment, error) {
	rel := 'a' <= cmd && cmd <= 'z'
	switch cmd {
	case 'M', 'm':
		p, err := s.point()
		return MoveSegment{End: p, Relative: rel}, err
	case 'L', 'l':
		p, err := s.point()
		return LineSegment{End: p, Relative: rel}, err
	case 'H', 'h':
		x, err := s.number()
		return LineSegment{End: Point{x, Unset}, Relative: rel}, err
	case 'V', 'v':
		y, err := s.number()
		return LineSegment{End: Point{Unset, y}, Relative: rel}, err
	case 'C', 'c':
		var seg CubicSegment
		seg.Relative = rel
		var err error
		if seg.C1, err = s.point(); err != nil {
			return nil, err
		}
		if seg.C2, err = s.point(); err != nil {
			return nil, err
		}
		seg.End, err = s.point()
		return seg, err
	case 'S', 's':
		seg := CubicSegment{Smooth: true, Relative: rel}
		var err error
		if seg.C2, err = s.point(); err != nil {
			return nil, err
		}
		seg.End, err = s.point()
		return seg, err
	case 'Q', 'q':
		seg := QuadSegment{Relative: rel}
		var err error
		if seg.C, err = s.point(); err != nil {
			return nil, err
		}
		seg.End, err = s.point()
		return seg, err
	case 'T', 't':
		p, err := s.point()
		return QuadSegment{End: p, Smooth: true, Relative: rel}, err
	case 'A', 'a':
		seg := ArcSegment{Relative: rel}
		var err error
		if seg.RX, err = s.number(); err != nil {
			return nil, err
		}
		if seg.RY, err = s.number(); err != nil {
			return nil, err
		}
		if seg.Rotation, err = s.number(); err != nil {
			return nil, err
		}
		if seg.LargeArc, err = s.flag(); err != nil {
			return nil, err
		}
		if seg.Sweep, err = s.flag(); err != nil {
			return nil, err
		}
		seg.End, err = s.point()
		return seg, err
	default: // Z, z
		return CloseSegment{}, nil
	}
}
