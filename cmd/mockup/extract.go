package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gogpu/mockup"
	"github.com/gogpu/mockup/psd"
)

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	in := fs.String("in", "", "PSD or PSB file")
	out := fs.String("out", "", "definition output (JSON); stdout when empty")
	name := fs.String("name", "", "definition name")
	previews := fs.String("previews", "", "directory for layer preview PNGs")
	composite := fs.String("composite", "", "write the merged image here and use it as the base layer")
	hidden := fs.Bool("hidden", false, "include hidden smart objects")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("extract: -in is required")
	}
	if _, err := common.setup(); err != nil {
		return err
	}

	f, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer f.Close()

	ex, err := psd.Extract(f, psd.ExtractOptions{
		Name:          *name,
		BaseSrc:       *composite,
		IncludeHidden: *hidden,
	})
	if err != nil {
		return err
	}
	log := mockup.Logger()
	for _, w := range ex.Warnings {
		log.Warn("extract", "warning", w)
	}

	if *composite != "" {
		if ex.Composite == nil {
			return fmt.Errorf("extract: %s has no merged image", *in)
		}
		if err := writePNG(*composite, ex.Composite); err != nil {
			return err
		}
	}
	if *previews != "" {
		if err := os.MkdirAll(*previews, 0o755); err != nil {
			return err
		}
		for key, img := range ex.Previews {
			if err := writePNG(filepath.Join(*previews, key+".png"), img); err != nil {
				return err
			}
		}
	}

	data, err := json.MarshalIndent(ex.Definition, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if *out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	log.Info("extracted", "areas", len(ex.Definition.InsertAreas), "out", *out)
	return os.WriteFile(*out, data, 0o644)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
