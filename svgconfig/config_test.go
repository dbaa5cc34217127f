package svgconfig

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/benoitkugler/svgrender/svgparse"
	"github.com/benoitkugler/svgrender/svgrender"
)

func TestDefault(t *testing.T) {
	conf := Default()
	require.NoError(t, conf.Validate())

	mode, err := conf.Mode()
	require.NoError(t, err)
	assert.Equal(t, svgparse.WarnErrorMode, mode)

	bg, err := conf.BackgroundColor()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{}, bg)
}

func TestDecode(t *testing.T) {
	conf, err := Decode(`
ppi = 72.0
background = "#ff0000"
error_mode = "strict"
language = "fr-CA"
width = 200
`)
	require.NoError(t, err)
	assert.Equal(t, 72., conf.PPI)
	assert.Equal(t, 16., conf.FontSize) // default kept
	assert.Equal(t, 200, conf.Width)

	mode, err := conf.Mode()
	require.NoError(t, err)
	assert.Equal(t, svgparse.StrictErrorMode, mode)

	bg, err := conf.BackgroundColor()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, bg)
}

func TestDecodeErrors(t *testing.T) {
	for _, data := range []string{
		`ppi = "high"`,                // wrong type
		`unknown_key = 1`,             // undecoded
		`ppi = -1.0`,                  // range
		`font_size = 0.0`,             // range
		`width = -4`,                  // range
		`supersample = 0`,             // range
		`supersample = 9`,             // range
		`error_mode = "loud"`,         // enum
		`background = "notacolor"`,    // color syntax
		`language = "not a language"`, // BCP 47
		`ppi = `,                      // TOML syntax
	} {
		_, err := Decode(data)
		assert.Error(t, err, data)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	conf := Default()
	conf.Background = "white"
	conf.Height = 50

	var buf bytes.Buffer
	require.NoError(t, conf.Encode(&buf))
	assert.Contains(t, buf.String(), `background = "white"`)

	got, err := Decode(buf.String())
	require.NoError(t, err)
	assert.Equal(t, conf, got)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.toml")
	require.NoError(t, os.WriteFile(path, []byte("font_size = 12.0\nerror_mode = \"ignore\"\n"), 0o644))

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12., conf.FontSize)
	assert.Equal(t, "ignore", conf.ErrorMode)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	conf := Default()
	conf.PPI = 300
	conf.FontSize = 10
	conf.Language = "de"

	doc := svgrender.NewDocument(svgrender.NewFragment())
	require.NoError(t, conf.Apply(doc))
	assert.Equal(t, 300., doc.PPI)
	assert.Equal(t, 10., doc.FontSize)
	assert.Equal(t, language.German, doc.Language)

	conf.Language = ""
	require.NoError(t, conf.Apply(doc))
	assert.Equal(t, language.English, doc.Language)
}

func TestOutputSize(t *testing.T) {
	conf := Default()
	w, h := conf.OutputSize(100.2, 50)
	assert.Equal(t, [2]int{101, 50}, [2]int{w, h})

	conf.Width = 200
	w, h = conf.OutputSize(100, 50)
	assert.Equal(t, [2]int{200, 100}, [2]int{w, h})

	conf.Width, conf.Height = 0, 25
	w, h = conf.OutputSize(100, 50)
	assert.Equal(t, [2]int{50, 25}, [2]int{w, h})

	conf.Width, conf.Height = 30, 40
	w, h = conf.OutputSize(100, 50)
	assert.Equal(t, [2]int{30, 40}, [2]int{w, h})
}
