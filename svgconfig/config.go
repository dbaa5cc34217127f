// Package svgconfig stores the rendering settings of the
// command line tool, read from a TOML file.
package svgconfig

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"

	"github.com/benoitkugler/svgrender/svgparse"
	"github.com/benoitkugler/svgrender/svgrender"
	"github.com/benoitkugler/svgrender/svgunit"
)

// Config is the rendering configuration.
type Config struct {
	// PPI is the resolution used for absolute units.
	PPI float64 `toml:"ppi"`
	// FontSize is the default font size, in pixels.
	FontSize float64 `toml:"font_size"`
	// Language is the BCP 47 tag matched by <switch> elements.
	Language string `toml:"language"`
	// Background is an SVG color painted below the document.
	// Empty means transparent.
	Background string `toml:"background"`
	// ErrorMode is one of "ignore", "warn" or "strict".
	ErrorMode string `toml:"error_mode"`
	// Width and Height are the output size in pixels. Zero values
	// select the natural size; when only one is given, the other
	// keeps the document aspect ratio.
	Width  int `toml:"width"`
	Height int `toml:"height"`
	// Supersample renders at a multiple of the output size,
	// then downsamples with a Lanczos filter. 1 disables it.
	Supersample int `toml:"supersample"`
}

// MaxSupersample bounds Config.Supersample.
const MaxSupersample = 8

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		PPI:         svgunit.DefaultPPI,
		FontSize:    16,
		Language:    "en",
		ErrorMode:   "warn",
		Supersample: 1,
	}
}

// Decode reads a TOML document. Missing keys keep
// their default value, unknown keys are an error.
func Decode(data string) (Config, error) {
	conf := Default()
	md, err := toml.Decode(data, &conf)
	if err != nil {
		return Config{}, fmt.Errorf("svgconfig: %w", err)
	}
	return conf, conf.check(md)
}

// Load reads the TOML file at `path`.
func Load(path string) (Config, error) {
	conf := Default()
	md, err := toml.DecodeFile(path, &conf)
	if err != nil {
		return Config{}, fmt.Errorf("svgconfig: %w", err)
	}
	return conf, conf.check(md)
}

func (conf Config) check(md toml.MetaData) error {
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("svgconfig: unknown keys %s", strings.Join(keys, ", "))
	}
	return conf.Validate()
}

// Validate checks the ranges and the syntax of the values.
func (conf Config) Validate() error {
	if conf.PPI <= 0 {
		return fmt.Errorf("svgconfig: invalid ppi %g", conf.PPI)
	}
	if conf.FontSize <= 0 {
		return fmt.Errorf("svgconfig: invalid font size %g", conf.FontSize)
	}
	if conf.Width < 0 || conf.Height < 0 {
		return fmt.Errorf("svgconfig: invalid output size %dx%d", conf.Width, conf.Height)
	}
	if conf.Supersample < 1 || conf.Supersample > MaxSupersample {
		return fmt.Errorf("svgconfig: supersample must be in [1, %d], got %d", MaxSupersample, conf.Supersample)
	}
	if _, err := conf.Mode(); err != nil {
		return err
	}
	if _, err := conf.BackgroundColor(); err != nil {
		return err
	}
	if _, err := conf.Tag(); err != nil {
		return err
	}
	return nil
}

// Encode writes the configuration as TOML.
func (conf Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(conf)
}

// Mode returns the parser error mode.
func (conf Config) Mode() (svgparse.ErrorMode, error) {
	switch conf.ErrorMode {
	case "ignore":
		return svgparse.IgnoreErrorMode, nil
	case "", "warn":
		return svgparse.WarnErrorMode, nil
	case "strict":
		return svgparse.StrictErrorMode, nil
	}
	return 0, fmt.Errorf("svgconfig: invalid error mode %q", conf.ErrorMode)
}

// BackgroundColor returns the background, transparent if not set.
func (conf Config) BackgroundColor() (color.NRGBA, error) {
	if conf.Background == "" {
		return color.NRGBA{}, nil
	}
	c, err := svgparse.ParseColor(conf.Background)
	if err != nil {
		return c, fmt.Errorf("svgconfig: %w", err)
	}
	return c, nil
}

// Tag returns the parsed language, English if not set.
func (conf Config) Tag() (language.Tag, error) {
	if conf.Language == "" {
		return language.English, nil
	}
	tag, err := language.Parse(conf.Language)
	if err != nil {
		return language.Und, fmt.Errorf("svgconfig: invalid language %q: %w", conf.Language, err)
	}
	return tag, nil
}

// Apply copies the document settings into `doc`.
func (conf Config) Apply(doc *svgrender.Document) error {
	tag, err := conf.Tag()
	if err != nil {
		return err
	}
	doc.PPI = conf.PPI
	doc.FontSize = conf.FontSize
	doc.Language = tag
	return nil
}

// OutputSize returns the size of the output image, for a
// document whose natural size is `w` x `h`.
func (conf Config) OutputSize(w, h float64) (int, int) {
	width, height := conf.Width, conf.Height
	switch {
	case width == 0 && height == 0:
		return ceil(w), ceil(h)
	case height == 0 && w > 0:
		return width, ceil(float64(width) * h / w)
	case width == 0 && h > 0:
		return ceil(float64(height) * w / h), height
	}
	return width, height
}

func ceil(v float64) int {
	i := int(v)
	if float64(i) < v {
		i++
	}
	return i
}
