package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/gogpu/mockup"
)

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	defPath := fs.String("def", "", "mockup definition (JSON)")
	out := fs.String("out", "mockup.png", "output PNG")
	scale := fs.Float64("scale", 0, "export scale; overrides the config")
	best := fs.Bool("best", false, "best PNG compression")
	snaps := snapFlags{}
	fs.Var(snaps, "snap", "design snapshot as area=path; repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *defPath == "" {
		return fmt.Errorf("render: -def is required")
	}

	cfg, err := common.setup()
	if err != nil {
		return err
	}
	def, err := loadDefinition(*defPath)
	if err != nil {
		return err
	}
	snapshots, err := loadSnapshots(snaps)
	if err != nil {
		return err
	}
	c, err := newCompositor(cfg)
	if err != nil {
		return err
	}
	defer c.Destroy()

	opts := mockup.ExportOptions{Scale: cfg.Export.Scale}
	if *scale != 0 {
		opts.Scale = *scale
	}
	if *best {
		opts.Compression = png.BestCompression
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	start := time.Now()
	data, err := c.Export(ctx, def, snapshots, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	kind, _ := c.Ready(ctx)
	mockup.Logger().Info("rendered", "out", *out, "backend", kind, "elapsed", time.Since(start))
	return nil
}

func newCompositor(cfg config) (mockup.Compositor, error) {
	opts, err := cfg.compositorOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, mockup.WithReadyCallback(func(k mockup.BackendKind) {
		mockup.Logger().Debug("backend ready", "kind", k)
	}))
	return mockup.New(mockup.DirResolver{Root: cfg.Assets}, opts...), nil
}

func loadDefinition(path string) (*mockup.MockupDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def mockup.MockupDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &def, nil
}

func loadSnapshots(paths snapFlags) (mockup.Snapshots, error) {
	snaps := make(mockup.Snapshots, len(paths))
	for key, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		img, err := mockup.DecodeImage(data)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", key, err)
		}
		snaps[key] = mockup.NewSnapshot(key, img)
		mockup.Logger().Debug("snapshot loaded", "area", key, "w", img.Width(), "h", img.Height())
	}
	return snaps, nil
}
