package svgfilter

// Primitive is one stage of a filter: it reads zero or more
// named inputs from the buffer and writes exactly one result.
type Primitive interface {
	Apply(buf *ImageBuffer)
}

// Run applies the primitives in order.
func Run(buf *ImageBuffer, primitives []Primitive) {
	for _, p := range primitives {
		p.Apply(buf)
	}
}
