// Package svgfont provides the font faces used to lay out text:
// metrics, advances and glyph outlines, backed by golang.org/x/image/font/sfnt.
//
// The Go fonts are always available, under the generic families
// "sans-serif", "serif" and "monospace".
package svgfont

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Style selects a variant inside a family.
type Style struct {
	Bold, Italic bool
}

func (s Style) index() int {
	i := 0
	if s.Bold {
		i |= 1
	}
	if s.Italic {
		i |= 2
	}
	return i
}

// family stores the (lazily parsed) variants of a family,
// indexed by Style.index
type family struct {
	data  [4][]byte
	fonts [4]*sfnt.Font
}

// Collection maps family names to fonts.
// It is safe for concurrent use.
type Collection struct {
	mu       sync.Mutex
	families map[string]*family
	fallback string
}

const (
	familySans  = "sans-serif"
	familySerif = "serif"
	familyMono  = "monospace"
)

// NewCollection returns a collection with the Go fonts registered.
func NewCollection() *Collection {
	c := &Collection{families: make(map[string]*family), fallback: familySans}
	regular := &family{data: [4][]byte{goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF}}
	c.families[familySans] = regular
	c.families[familySerif] = regular
	c.families["go"] = regular
	mono := &family{data: [4][]byte{gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF}}
	c.families[familyMono] = mono
	c.families["go mono"] = mono
	return c
}

var (
	defaultCollection     *Collection
	defaultCollectionOnce sync.Once
)

// Default returns the shared collection, with the Go fonts only.
func Default() *Collection {
	defaultCollectionOnce.Do(func() { defaultCollection = NewCollection() })
	return defaultCollection
}

func normalizeFamily(name string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(name), `"'`))
}

// Register adds a font file (TTF or OTF) to the family `name`.
// The file is parsed immediately.
func (c *Collection) Register(name string, style Style, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("svgfont: invalid font for family %q: %w", name, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := normalizeFamily(name)
	fam := c.families[key]
	if fam == nil {
		fam = &family{}
		c.families[key] = fam
	}
	fam.data[style.index()] = data
	fam.fonts[style.index()] = f
	return nil
}

// Lookup resolves a CSS font-family list, such as "Arial, sans-serif",
// to the first registered family, using the fallback family when none matches.
// A missing style variant falls back on the regular one.
func (c *Collection) Lookup(families string, style Style) (*sfnt.Font, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var fam *family
	for _, name := range strings.Split(families, ",") {
		if fam = c.families[normalizeFamily(name)]; fam != nil {
			break
		}
	}
	if fam == nil {
		fam = c.families[c.fallback]
	}
	for _, index := range [...]int{style.index(), Style{Bold: style.Bold}.index(), 0} {
		if fam.fonts[index] != nil {
			return fam.fonts[index], nil
		}
		if fam.data[index] == nil {
			continue
		}
		f, err := opentype.Parse(fam.data[index])
		if err != nil {
			return nil, fmt.Errorf("svgfont: parsing font: %w", err)
		}
		fam.fonts[index] = f
		return f, nil
	}
	return nil, fmt.Errorf("svgfont: no font for family %q", families)
}

// NewFace is a convenience wrapper around Lookup and NewFace.
func (c *Collection) NewFace(families string, style Style, size float64) (*Face, error) {
	f, err := c.Lookup(families, style)
	if err != nil {
		return nil, err
	}
	return NewFace(f, size), nil
}
