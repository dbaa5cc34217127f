// Package svgparse builds svgrender documents from SVG files.
//
// Only a subset of SVG is supported : see the elementFuncs table
// for the list of handled elements. Presentation attributes and
// `style` attributes are merged into the element styles, the latter
// taking priority. `<style>` sheets are ignored.
package svgparse

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aymerick/douceur/css"
	"golang.org/x/net/html/charset"

	"github.com/benoitkugler/svgrender/svgrender"
)

// ErrorMode determines how unsupported elements and
// malformed attributes are handled.
type ErrorMode uint8

const (
	// IgnoreErrorMode silently skips unsupported content.
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode logs unsupported content with svgrender.Logger().
	WarnErrorMode
	// StrictErrorMode fails on the first unsupported content.
	StrictErrorMode
)

// ErrInvalidSVG is returned when the input has no <svg> root element.
var ErrInvalidSVG = errors.New("svgparse: invalid svg document")

type (
	// cursor is used while parsing SVG files
	cursor struct {
		errorMode ErrorMode

		root  *svgrender.Fragment
		stack []svgrender.Element // currently opened elements
		// skip is the depth inside an ignored subtree
		skip int

		styled []*styledElement
	}

	// styledElement stores the style sources of an element,
	// applied once the whole document is read.
	styledElement struct {
		el     svgrender.Element
		tag    string
		attrs  []xml.Attr
		inline []*css.Declaration
	}
)

// Parse reads an SVG document from `stream`.
func Parse(stream io.Reader, errMode ErrorMode) (*svgrender.Document, error) {
	c := &cursor{errorMode: errMode}
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("svgparse: %w", err)
		}
		switch se := t.(type) {
		case xml.StartElement:
			if err = c.readStartElement(se); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if err = c.readEndElement(); err != nil {
				return nil, err
			}
		case xml.CharData:
			c.readCharData(se)
		}
	}
	if c.root == nil {
		return nil, ErrInvalidSVG
	}
	if err := c.applyStyles(); err != nil {
		return nil, err
	}
	return svgrender.NewDocument(c.root), nil
}

// ParseFile reads the SVG document stored in the named file.
func ParseFile(svgFile string, errMode ErrorMode) (*svgrender.Document, error) {
	fin, err := os.Open(svgFile)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	return Parse(fin, errMode)
}

// report handles a non fatal problem according to the error mode.
func (c *cursor) report(err error) error {
	switch c.errorMode {
	case StrictErrorMode:
		return err
	case WarnErrorMode:
		svgrender.Logger().Warn("svgparse: " + err.Error())
	}
	return nil
}

// silently skipped elements
var metadataElements = map[string]bool{
	"title":    true,
	"desc":     true,
	"metadata": true,
}

func (c *cursor) readStartElement(se xml.StartElement) error {
	if c.skip > 0 {
		c.skip++
		return nil
	}
	tag := se.Name.Local
	if c.root == nil && tag != "svg" {
		return fmt.Errorf("%w: unexpected root element <%s>", ErrInvalidSVG, tag)
	}
	switch {
	case tag == "style":
		svgrender.Logger().Debug("svgparse: style sheet ignored")
		c.skip = 1
		return nil
	case metadataElements[tag]:
		c.skip = 1
		return nil
	}
	df, ok := elementFuncs[tag]
	if !ok {
		c.skip = 1
		return c.report(fmt.Errorf("cannot process svg element %s", tag))
	}
	el, err := df(c, se.Attr)
	if err != nil {
		return err
	}
	if err = c.readCommonAttrs(el, tag, se.Attr); err != nil {
		return err
	}
	if len(c.stack) == 0 {
		c.root = el.(*svgrender.Fragment)
	} else {
		svgrender.AppendChild(c.stack[len(c.stack)-1], el)
	}
	c.stack = append(c.stack, el)
	return nil
}

func (c *cursor) readEndElement() error {
	if c.skip > 0 {
		c.skip--
		return nil
	}
	if len(c.stack) > 0 {
		c.stack = c.stack[:len(c.stack)-1]
	}
	return nil
}

func (c *cursor) readCharData(data xml.CharData) {
	if c.skip > 0 || len(c.stack) == 0 {
		return
	}
	switch parent := c.stack[len(c.stack)-1].(type) {
	case *svgrender.Text, *svgrender.TSpan, *svgrender.TextPath:
		svgrender.AppendChild(parent, &svgrender.TextNode{Data: string(data)})
	}
}

// readCommonAttrs reads the attributes shared by every element,
// and records its style sources.
func (c *cursor) readCommonAttrs(el svgrender.Element, tag string, attrs []xml.Attr) error {
	n := svgrender.NodeOf(el)
	st := &styledElement{el: el, tag: tag}
	for _, attr := range attrs {
		var err error
		switch attr.Name.Local {
		case "id":
			n.ID = strings.TrimSpace(attr.Value)
		case "transform":
			n.Transforms, err = parseTransform(attr.Value)
		case "systemLanguage":
			n.SystemLanguage = attr.Value
		case "style":
			st.inline, err = parseStyleAttr(attr.Value)
		default:
			if isProperty(attr.Name.Local) {
				st.attrs = append(st.attrs, attr)
			}
		}
		if err != nil {
			if err = c.report(fmt.Errorf("invalid attribute %s on <%s>: %s", attr.Name.Local, tag, err)); err != nil {
				return err
			}
		}
	}
	c.styled = append(c.styled, st)
	return nil
}

// textContent returns nil for non text elements.
func textContent(el svgrender.Element) *svgrender.TextContent {
	switch el := el.(type) {
	case *svgrender.Text:
		return &el.TextContent
	case *svgrender.TSpan:
		return &el.TextContent
	case *svgrender.TextPath:
		return &el.TextContent
	}
	return nil
}

// parentPreserves returns true if the opened element
// has xml:space="preserve".
func (c *cursor) parentPreserves() bool {
	if len(c.stack) == 0 {
		return false
	}
	tc := textContent(c.stack[len(c.stack)-1])
	return tc != nil && tc.PreserveSpace
}
