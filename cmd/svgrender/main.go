// Command svgrender renders an SVG document to a PNG, JPEG or PDF file.
//
// Usage:
//
//	svgrender -in drawing.svg -out drawing.png [-config render.toml]
//
// The `-` name (the default) selects stdin for -in and stdout for -out,
// in which case the output is PNG. A .pdf destination selects the
// vector backend, which ignores the output size settings.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/term"

	"github.com/benoitkugler/svgrender/svgconfig"
	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/benoitkugler/svgrender/svgparse"
	"github.com/benoitkugler/svgrender/svgpdf"
	"github.com/benoitkugler/svgrender/svgraster"
	"github.com/benoitkugler/svgrender/svgrender"
)

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

type options struct {
	source, destination string
	configFile          string
	width, height       int
	supersample         int
	background          string
	verbose             bool
	dump                bool
	printConfig         bool
}

func parseFlags(args []string) (options, error) {
	var opt options
	fs := flag.NewFlagSet("svgrender", flag.ContinueOnError)
	fs.StringVar(&opt.source, "in", pipeName, "Source SVG file")
	fs.StringVar(&opt.destination, "out", pipeName, "Destination file (.png, .jpg or .pdf)")
	fs.StringVar(&opt.configFile, "config", "", "TOML configuration file")
	fs.IntVar(&opt.width, "width", 0, "Output width, overrides the configuration")
	fs.IntVar(&opt.height, "height", 0, "Output height, overrides the configuration")
	fs.IntVar(&opt.supersample, "supersample", 0, "Supersampling factor, overrides the configuration")
	fs.StringVar(&opt.background, "bg", "", "Background color, overrides the configuration")
	fs.BoolVar(&opt.verbose, "log", false, "Print debugging output to stderr")
	fs.BoolVar(&opt.dump, "dump", false, "Print the drawing operations instead of rendering")
	fs.BoolVar(&opt.printConfig, "print-config", false, "Print the effective configuration and exit")
	err := fs.Parse(args)
	return opt, err
}

// config loads the configuration file, if any, and applies the flags.
func (opt options) config() (svgconfig.Config, error) {
	conf := svgconfig.Default()
	if opt.configFile != "" {
		var err error
		conf, err = svgconfig.Load(opt.configFile)
		if err != nil {
			return conf, err
		}
	}
	if opt.width != 0 {
		conf.Width = opt.width
	}
	if opt.height != 0 {
		conf.Height = opt.height
	}
	if opt.supersample != 0 {
		conf.Supersample = opt.supersample
	}
	if opt.background != "" {
		conf.Background = opt.background
	}
	return conf, conf.Validate()
}

func main() {
	log.SetFlags(0)

	opt, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	level := slog.LevelWarn
	if opt.verbose {
		level = slog.LevelDebug
	}
	svgrender.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	conf, err := opt.config()
	if err != nil {
		log.Fatal(err)
	}
	if opt.printConfig {
		if err := conf.Encode(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := run(opt, conf); err != nil {
		log.Fatalf("svgrender: %s", err)
	}
}

func run(opt options, conf svgconfig.Config) error {
	var src io.Reader
	if opt.source == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		f, err := os.Open(opt.source)
		if err != nil {
			return fmt.Errorf("unable to open the source file: %v", err)
		}
		defer f.Close()
		src = f
	}

	doc, err := load(src, conf)
	if err != nil {
		return err
	}

	if opt.dump {
		rec := svgdraw.New()
		if err := doc.Draw(rec); err != nil {
			return err
		}
		return rec.Dump(os.Stdout)
	}

	if strings.EqualFold(filepath.Ext(opt.destination), ".pdf") {
		return writePDF(doc, opt.destination)
	}

	img, err := render(doc, conf)
	if err != nil {
		return err
	}

	if opt.destination == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("`-` should be used with a pipe for stdout")
		}
		return imaging.Encode(os.Stdout, img, imaging.PNG)
	}
	return imaging.Save(img, opt.destination)
}

// load parses the document and applies the configuration.
func load(src io.Reader, conf svgconfig.Config) (*svgrender.Document, error) {
	mode, err := conf.Mode()
	if err != nil {
		return nil, err
	}
	doc, err := svgparse.Parse(src, mode)
	if err != nil {
		return nil, err
	}
	if err := conf.Apply(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// render rasterizes `doc` at the configured size, and flattens
// the result on the background color.
func render(doc *svgrender.Document, conf svgconfig.Config) (image.Image, error) {
	width, height := conf.OutputSize(doc.Dimensions())
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("empty output size %dx%d", width, height)
	}
	bg, err := conf.BackgroundColor()
	if err != nil {
		return nil, err
	}

	ss := conf.Supersample
	if ss < 1 {
		ss = 1
	}
	rgba, err := svgraster.RasterizeSize(doc, width*ss, height*ss)
	if err != nil {
		return nil, err
	}
	var out image.Image = rgba
	if ss > 1 {
		out = imaging.Resize(rgba, width, height, imaging.Lanczos)
	}
	if bg.A != 0 {
		out = imaging.Overlay(imaging.New(width, height, bg), out, image.Point{}, 1)
	}
	return out, nil
}

func writePDF(doc *svgrender.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %v", err)
	}
	if err := svgpdf.Write(doc, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
