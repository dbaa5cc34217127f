package svgrender

import (
	"math"
	"strings"
	"unicode"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgunit"
)

// textLayout is the result of the layout of a <text> element:
// the glyph outlines of each text element, in the user space of the <text>.
type textLayout struct {
	own map[Element]svgpath.Path // glyphs of the element only
	all map[Element]svgpath.Path // glyphs of the element and its descendants
}

// fragment is a run of glyphs of one element, inside one text chunk.
type fragment struct {
	owner Element
	path  svgpath.Path
}

// pathLayout is the geometry followed by a <textPath>
type pathLayout struct {
	measure *svgpath.Measure
}

// scope is a text element being laid out.
type scope struct {
	el      textElement
	start   int // global index of its first character
	font    Font
	current *fragment

	x, y, dx, dy []float64
	rotate       []float64
	letter, word float64
	shift        float64 // baseline shift, accumulated from the ancestors
	extra        float64 // additional letter spacing, from textLength
	path         *pathLayout
}

type layouter struct {
	ctx  *Context
	text map[*TextNode]string // whitespace processed character data

	pos       svgpath.Point
	charIndex int
	first     bool // no character laid out yet

	fragments   []*fragment
	chunk       []*fragment
	chunkStart  float64
	chunkAnchor TextAnchor
	anchorSet   bool

	scopes []*scope
	// dry runs only measure advances
	dry bool
}

func layoutText(ctx *Context, t *Text) *textLayout {
	l := &layouter{ctx: ctx, text: prepareText(t), first: true}
	l.layoutElement(t)
	l.flush()

	out := &textLayout{own: map[Element]svgpath.Path{}, all: map[Element]svgpath.Path{}}
	for _, f := range l.fragments {
		p := out.own[f.owner]
		p.Append(f.path)
		out.own[f.owner] = p
	}
	var gather func(el Element) svgpath.Path
	gather = func(el Element) svgpath.Path {
		all := append(svgpath.Path(nil), out.own[el]...)
		for _, child := range el.node().children {
			if c, ok := child.(textElement); ok {
				all.Append(gather(c))
			}
		}
		out.all[el] = all
		return all
	}
	gather(t)
	return out
}

// prepareText applies the whitespace handling to every
// character data of `t`, in document order.
func prepareText(t *Text) map[*TextNode]string {
	out := map[*TextNode]string{}
	lastSpace := true // leading spaces are removed
	var last *TextNode
	var walk func(el Element, preserve bool)
	walk = func(el Element, preserve bool) {
		if tc, ok := el.(textElement); ok {
			preserve = preserve || tc.content().PreserveSpace
		}
		for _, child := range el.node().children {
			switch child := child.(type) {
			case *TextNode:
				s := collapseSpaces(child.Data, preserve, &lastSpace)
				out[child] = s
				if s != "" {
					last = child
				}
			case textElement:
				walk(child, preserve)
			}
		}
	}
	walk(t, false)
	// trailing spaces are removed
	if last != nil && !t.PreserveSpace {
		out[last] = strings.TrimRight(out[last], " ")
	}
	return out
}

// collapseSpaces removes newlines, converts tabs to spaces
// and merges consecutive spaces, unless `preserve` is true.
func collapseSpaces(s string, preserve bool, lastSpace *bool) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\n', '\r':
			if !preserve {
				continue
			}
			r = ' '
		case '\t':
			r = ' '
		}
		if r == ' ' && !preserve {
			if *lastSpace {
				continue
			}
			*lastSpace = true
		} else {
			*lastSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// value returns the value of `list` for the global character
// index `g`, looking up the enclosing elements.
func (l *layouter) value(g int, list func(sc *scope) []float64) (float64, bool) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		sc := l.scopes[i]
		if v := list(sc); g-sc.start < len(v) {
			return v[g-sc.start], true
		}
	}
	return 0, false
}

// rotation returns the rotation of the character `g`: the last value
// of a list applies to the following characters.
func (l *layouter) rotation(g int) float64 {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		sc := l.scopes[i]
		if len(sc.rotate) == 0 {
			continue
		}
		if idx := g - sc.start; idx < len(sc.rotate) {
			return sc.rotate[idx]
		}
		return sc.rotate[len(sc.rotate)-1]
	}
	return 0
}

func (l *layouter) top() *scope { return l.scopes[len(l.scopes)-1] }

func (l *layouter) pathLayout() *pathLayout {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if p := l.scopes[i].path; p != nil {
			return p
		}
	}
	return nil
}

// flush ends the current chunk, applying its text anchor.
func (l *layouter) flush() {
	if !l.dry && l.anchorSet && l.pathLayout() == nil && len(l.chunk) != 0 {
		width := l.pos.X - l.chunkStart
		var offset float64
		switch l.chunkAnchor {
		case AnchorMiddle:
			offset = -width / 2
		case AnchorEnd:
			offset = -width
		}
		if offset != 0 {
			m := svgpath.Identity.Translate(offset, 0)
			for _, f := range l.chunk {
				f.path = f.path.Transform(m)
			}
		}
	}
	l.chunk = nil
	l.chunkStart = l.pos.X
	l.anchorSet = false
	if !l.dry { // scopes are shared with dry runs
		for _, sc := range l.scopes {
			sc.current = nil
		}
	}
}

// emit adds glyphs to the current fragment of the innermost element.
func (l *layouter) emit(glyphs func(path *svgpath.Path)) {
	if l.dry {
		return
	}
	sc := l.top()
	if !l.anchorSet {
		l.chunkAnchor, l.anchorSet = sc.el.node().textAnchor(), true
	}
	if sc.current == nil {
		sc.current = &fragment{owner: sc.el}
		l.fragments = append(l.fragments, sc.current)
		l.chunk = append(l.chunk, sc.current)
	}
	glyphs(&sc.current.path)
}

func (l *layouter) newScope(el textElement) *scope {
	tc := el.content()
	ctx := l.ctx
	sc := &scope{el: el, start: l.charIndex, font: ctx.font(el)}
	sc.x = tc.X.Resolve(ctx, svgunit.Horizontal, el)
	sc.y = tc.Y.Resolve(ctx, svgunit.Vertical, el)
	sc.rotate = tc.Rotate
	if len(l.scopes) != 0 {
		sc.shift = l.top().shift
	}
	if sc.font == nil {
		return sc
	}

	// relative values are resolved against the font box
	ctx.withBoundable(svgunit.RectBoundable{W: 1, H: sc.font.Size()}, func() {
		sc.dx = tc.DX.Resolve(ctx, svgunit.Horizontal, el)
		sc.dy = tc.DY.Resolve(ctx, svgunit.Vertical, el)
		n := el.node()
		if ls := lookupLength(n, func(s *Style) *svgunit.Length { return s.LetterSpacing }); ls != nil {
			sc.letter = ls.Resolve(ctx, svgunit.Horizontal, el)
		}
		if ws := lookupLength(n, func(s *Style) *svgunit.Length { return s.WordSpacing }); ws != nil {
			sc.word = ws.Resolve(ctx, svgunit.Horizontal, el)
		}
		sc.shift += baselineShift(ctx, n, sc.font)
	})
	return sc
}

// baselineShift returns the vertical offset of the baseline;
// positive values move down.
func baselineShift(ctx *Context, n *Node, font Font) float64 {
	switch v := strings.TrimSpace(n.Style.BaselineShift); v {
	case "", "baseline":
		return 0
	case "sub":
		return font.Size() / 2 // 1ex
	case "super":
		return -font.Size() / 2
	default:
		length, err := svgunit.Parse(v)
		if err != nil {
			Logger().Debug("invalid baseline-shift", "value", v)
			return 0
		}
		return -length.Resolve(ctx, svgunit.Vertical, n)
	}
}

func (l *layouter) layoutElement(el textElement) {
	sc := l.newScope(el)
	l.scopes = append(l.scopes[:len(l.scopes):len(l.scopes)], sc)
	defer func() { l.scopes = l.scopes[:len(l.scopes)-1] }()

	tc := el.content()
	if tp, ok := el.(*TextPath); ok {
		l.layoutOnPath(tp, sc)
		return
	}

	var want float64
	if tc.TextLength != nil {
		want = tc.TextLength.Resolve(l.ctx, svgunit.Horizontal, el)
	}
	scaleGlyphs := tc.LengthAdjust == SpacingAndGlyphs || len(sc.x) >= 2
	if want > 0 && !scaleGlyphs && !l.dry {
		// adjust the spacing, using a first measuring pass
		have, count := l.measure(sc)
		if diff := want - have; math.Abs(diff) > 1.5 && count > 1 {
			sc.extra = diff / float64(count-1)
		}
	}

	startX, startFragment := l.startX(), len(l.fragments)
	l.layoutChildren(sc)

	if want > 0 && scaleGlyphs && !l.dry {
		have := l.pos.X - startX
		if have > 0 && math.Abs(want-have) > 1.5 {
			k := want / have
			m := svgpath.Identity.Translate(startX, 0).Scale(k, 1).Translate(-startX, 0)
			for _, f := range l.fragments[startFragment:] {
				f.path = f.path.Transform(m)
			}
			l.pos.X = startX + want
		}
	}
}

// measure returns the advance and the number of characters
// of the children of `sc`, without emitting glyphs.
func (l *layouter) measure(sc *scope) (advance float64, count int) {
	dry := &layouter{
		ctx: l.ctx, text: l.text,
		pos: l.pos, charIndex: l.charIndex, first: l.first,
		scopes: l.scopes[:len(l.scopes):len(l.scopes)],
		dry:    true,
	}
	dry.layoutChildren(sc)
	return dry.pos.X - l.startX(), dry.charIndex - l.charIndex
}

// startX returns the position of the next character,
// before any spacing is applied.
func (l *layouter) startX() float64 {
	if x, ok := l.value(l.charIndex, positionLists[0]); ok {
		return x
	}
	return l.pos.X
}

func (l *layouter) layoutChildren(sc *scope) {
	for _, child := range sc.el.node().children {
		switch child := child.(type) {
		case *TextNode:
			l.layoutString(sc, l.text[child])
		case textElement:
			l.layoutElement(child)
		}
	}
}

// spacing returns the space added before the character `g`
func (l *layouter) spacing(g int, r rune) float64 {
	if l.first {
		return 0
	}
	sc := l.top()
	s := sc.letter
	if unicode.IsSpace(r) {
		s += sc.word
	}
	for _, o := range l.scopes {
		if g > o.start {
			s += o.extra
		}
	}
	return s
}

// lastIndividual returns the index of the last character of `runes`
// which needs to be placed on its own.
func (l *layouter) lastIndividual(sc *scope, runes []rune) int {
	if l.pathLayout() != nil || sc.letter != 0 || sc.word != 0 {
		return len(runes) - 1
	}
	last := -1
	for i := range runes {
		g := l.charIndex + i
		if l.rotation(g) != 0 {
			return len(runes) - 1
		}
		for _, list := range positionLists {
			if _, ok := l.value(g, list); ok {
				last = i
			}
		}
		for _, o := range l.scopes {
			if o.extra != 0 && g > o.start {
				last = i
			}
		}
	}
	return last
}

var positionLists = [...]func(sc *scope) []float64{
	func(sc *scope) []float64 { return sc.x },
	func(sc *scope) []float64 { return sc.y },
	func(sc *scope) []float64 { return sc.dx },
	func(sc *scope) []float64 { return sc.dy },
}

func (l *layouter) layoutString(sc *scope, s string) {
	if s == "" {
		return
	}
	runes := []rune(s)
	if sc.font == nil {
		l.charIndex += len(runes)
		return
	}
	last := l.lastIndividual(sc, runes)
	boxes := sc.font.MeasureCharacters(s)
	for i, r := range runes {
		if i > last {
			rest := string(runes[i:])
			width, _ := sc.font.MeasureString(rest)
			origin := svgpath.Point{X: l.pos.X, Y: l.pos.Y + sc.shift}
			l.emit(func(path *svgpath.Path) { sc.font.AppendString(path, rest, origin) })
			l.pos.X += width
			l.charIndex += len(runes) - i
			l.first = false
			return
		}
		var advance float64
		if i < len(boxes) {
			advance = boxes[i].W
		}
		l.placeChar(sc, r, advance)
	}
}

func (l *layouter) placeChar(sc *scope, r rune, advance float64) {
	g := l.charIndex
	if x, ok := l.value(g, positionLists[0]); ok {
		l.flush()
		l.pos.X = x
		l.chunkStart = x
	}
	if y, ok := l.value(g, positionLists[1]); ok {
		l.pos.Y = y
	}
	if dx, ok := l.value(g, positionLists[2]); ok {
		l.pos.X += dx
	}
	if dy, ok := l.value(g, positionLists[3]); ok {
		l.pos.Y += dy
	}
	l.pos.X += l.spacing(g, r)

	rotate := l.rotation(g) * math.Pi / 180
	var m svgpath.Matrix2D
	visible := true
	if pl := l.pathLayout(); pl != nil {
		p, angle, ok := pl.measure.PointAt(l.pos.X + advance/2)
		visible = ok
		m = svgpath.Identity.Translate(p.X, p.Y).Rotate(angle*math.Pi/180).
			Translate(-advance/2, l.pos.Y+sc.shift).Rotate(rotate)
	} else {
		m = svgpath.Identity.Translate(l.pos.X, l.pos.Y+sc.shift).Rotate(rotate)
	}
	if visible {
		l.emit(func(path *svgpath.Path) {
			var glyph svgpath.Path
			sc.font.AppendString(&glyph, string(r), svgpath.Point{})
			path.Append(glyph.Transform(m))
		})
	}
	l.pos.X += advance
	l.charIndex++
	l.first = false
}

// layoutOnPath lays out the children of a <textPath>. Positions
// are distances along the path, and the anchor applies to the
// whole content.
func (l *layouter) layoutOnPath(tp *TextPath, sc *scope) {
	ref := l.ctx.lookup(tp.Href)
	var geom svgpath.Path
	if ref != nil {
		geom = ref.Geometry(l.ctx).Transform(ref.node().Transforms.Matrix())
	}
	if len(geom) == 0 {
		Logger().Debug("text path without geometry", "href", tp.Href)
		l.charIndex += l.countChars(sc.el)
		return
	}
	measure := svgpath.NewMeasure(geom)
	total := measure.Length()
	scale := 1.
	if p, ok := ref.(*PathElement); ok && p.PathLength > 0 {
		scale = total / p.PathLength
	}

	var start float64
	l.ctx.withBoundable(svgunit.RectBoundable{W: total, H: 1}, func() {
		start = tp.StartOffset.Resolve(l.ctx, svgunit.Horizontal, tp) * scale
	})

	l.flush()
	outer := l.pos
	l.pos = svgpath.Point{X: start}
	if anchor := tp.textAnchor(); anchor != AnchorStart {
		width, _ := l.measure(sc)
		if anchor == AnchorMiddle {
			width /= 2
		}
		l.pos.X -= width
	}
	sc.path = &pathLayout{measure: measure}
	l.layoutChildren(sc)
	l.flush()

	if p, _, ok := measure.PointAt(math.Max(0, math.Min(total, l.pos.X))); ok {
		l.pos = p
	} else {
		l.pos = outer
	}
	l.chunkStart = l.pos.X
}

// countChars returns the number of characters in `el` and its descendants.
func (l *layouter) countChars(el Element) int {
	n := 0
	for _, child := range el.node().children {
		switch child := child.(type) {
		case *TextNode:
			n += len([]rune(l.text[child]))
		case textElement:
			n += l.countChars(child)
		}
	}
	return n
}
