package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/mockup"
	"github.com/gogpu/mockup/preview"
)

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	defPath := fs.String("def", "", "mockup definition (JSON)")
	area := fs.String("area", "", "insert area key the design is placed into; first area when empty")
	design := fs.String("design", "", "design image file to watch")
	out := fs.String("out", "preview.png", "preview PNG, rewritten on every change")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *defPath == "" || *design == "" {
		return fmt.Errorf("watch: -def and -design are required")
	}

	cfg, err := common.setup()
	if err != nil {
		return err
	}
	def, err := loadDefinition(*defPath)
	if err != nil {
		return err
	}
	key := *area
	if key == "" {
		if len(def.InsertAreas) == 0 {
			return fmt.Errorf("watch: %s has no insert areas", *defPath)
		}
		key = def.InsertAreas[0].Key(0)
	}

	c, err := newCompositor(cfg)
	if err != nil {
		return err
	}
	defer c.Destroy()

	src, err := preview.NewFileSource(*design)
	if err != nil {
		return err
	}
	defer src.Close()

	log := mockup.Logger()
	render := func(ctx context.Context, snap *mockup.TemplateSnapshot) {
		res := c.Render(ctx, def, mockup.Snapshots{key: snap})
		for _, w := range res.Warnings {
			log.Warn("render", "warning", w)
		}
		if !res.Success {
			log.Error("render failed", "err", res.Err)
			return
		}
		if err := res.Image.SavePNG(*out); err != nil {
			log.Error("save preview", "err", err)
			return
		}
		log.Info("preview updated", "out", *out, "backend", res.Backend, "elapsed", res.RenderTime)
	}

	var opts []preview.Option
	if cfg.Watch.Debounce > 0 {
		opts = append(opts, preview.WithDebounce(cfg.Watch.Debounce))
	}
	opts = append(opts, preview.WithInitialCapture())
	capturer := preview.SceneCapturer{Scene: &preview.ImageFileScene{Path: *design}, TemplateID: key}
	sync := preview.New(src, capturer, render, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := sync.Start(ctx); err != nil {
		return err
	}
	log.Info("watching", "design", *design, "area", key)
	<-ctx.Done()
	sync.Stop()
	return nil
}
