package main

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/svgrender/svgconfig"
)

const square = `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="10">
	<rect x="0" y="0" width="10" height="10" fill="blue"/>
</svg>`

func TestParseFlags(t *testing.T) {
	opt, err := parseFlags([]string{"-in", "a.svg", "-width", "40", "-bg", "white", "-dump"})
	require.NoError(t, err)
	assert.Equal(t, "a.svg", opt.source)
	assert.Equal(t, pipeName, opt.destination)
	assert.True(t, opt.dump)

	conf, err := opt.config()
	require.NoError(t, err)
	assert.Equal(t, 40, conf.Width)
	assert.Equal(t, "white", conf.Background)

	_, err = parseFlags([]string{"-unknown"})
	assert.Error(t, err)

	opt, err = parseFlags([]string{"-bg", "notacolor"})
	require.NoError(t, err)
	_, err = opt.config()
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.toml")
	require.NoError(t, os.WriteFile(path, []byte("width = 100\nheight = 30\n"), 0o644))

	opt, err := parseFlags([]string{"-config", path, "-height", "60"})
	require.NoError(t, err)
	conf, err := opt.config()
	require.NoError(t, err)
	assert.Equal(t, 100, conf.Width)
	assert.Equal(t, 60, conf.Height) // flag wins
}

func TestRender(t *testing.T) {
	conf := svgconfig.Default()
	doc, err := load(strings.NewReader(square), conf)
	require.NoError(t, err)

	img, err := render(doc, conf)
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())

	_, _, _, a := img.At(15, 5).RGBA()
	assert.Zero(t, a) // transparent outside the rect
	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Equal(t, [3]uint32{0, 0, 0xffff}, [3]uint32{r, g, b})
}

func TestRenderBackgroundSupersample(t *testing.T) {
	conf := svgconfig.Default()
	conf.Background = "white"
	conf.Supersample = 2
	conf.Width = 40
	doc, err := load(strings.NewReader(square), conf)
	require.NoError(t, err)

	img, err := render(doc, conf)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())

	c := color.NRGBAModel.Convert(img.At(30, 10)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{0xff, 0xff, 0xff, 0xff}, c)
	c = color.NRGBAModel.Convert(img.At(10, 10)).(color.NRGBA)
	assert.Equal(t, uint8(0xff), c.B)
	assert.Equal(t, uint8(0xff), c.A)
	assert.Less(t, c.R, uint8(0x10))
}

func TestRunWritesImage(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in.svg"), filepath.Join(dir, "out.png")
	require.NoError(t, os.WriteFile(in, []byte(square), 0o644))

	err := run(options{source: in, destination: out}, svgconfig.Default())
	require.NoError(t, err)

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())

	err = run(options{source: filepath.Join(dir, "missing.svg"), destination: out}, svgconfig.Default())
	assert.Error(t, err)
}

func TestRunWritesPDF(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in.svg"), filepath.Join(dir, "out.pdf")
	require.NoError(t, os.WriteFile(in, []byte(square), 0o644))

	require.NoError(t, run(options{source: in, destination: out}, svgconfig.Default()))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestLoadStrict(t *testing.T) {
	conf := svgconfig.Default()
	conf.ErrorMode = "strict"
	_, err := load(strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg"><rect width="abc"/></svg>`), conf)
	assert.Error(t, err)
}
