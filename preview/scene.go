// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"os"
	"sync"
	"time"

	"github.com/gogpu/mockup"
)

// ErrEmptyScene is returned when a scene reports a non-positive size.
var ErrEmptyScene = errors.New("preview: scene has no size")

// SceneRenderer draws a design at its logical (unzoomed) size.
type SceneRenderer interface {
	// LogicalSize is the design's natural size in pixels, independent of
	// any editor zoom.
	LogicalSize() (width, height int)
	// Render draws the design into dst, which has the logical size.
	Render(ctx context.Context, dst *mockup.Pixmap) error
}

// SceneCapturer captures a SceneRenderer off-screen.
type SceneCapturer struct {
	Scene      SceneRenderer
	TemplateID string
}

// Capture renders the scene into a fresh pixmap.
func (c SceneCapturer) Capture(ctx context.Context) (*mockup.TemplateSnapshot, error) {
	if c.Scene == nil {
		return nil, ErrEmptyScene
	}
	w, h := c.Scene.LogicalSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyScene, w, h)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pm := mockup.NewPixmap(w, h)
	if err := c.Scene.Render(ctx, pm); err != nil {
		return nil, fmt.Errorf("preview: render scene: %w", err)
	}
	return &mockup.TemplateSnapshot{
		TemplateID: c.TemplateID,
		Image:      pm,
		Width:      w,
		Height:     h,
		UpdatedAt:  time.Now(),
	}, nil
}

// ImageFileScene is a scene backed by an image file on disk, re-read on
// every LogicalSize call. It lets the CLI preview designs exported by any
// external editor.
type ImageFileScene struct {
	Path string

	mu  sync.Mutex
	img *mockup.Pixmap
	err error
}

// LogicalSize loads the file and returns its pixel size; 0x0 when the file
// cannot be read or decoded.
func (s *ImageFileScene) LogicalSize() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img, s.err = s.load()
	if s.err != nil {
		return 0, 0
	}
	return s.img.Width(), s.img.Height()
}

// Render copies the image loaded by the last LogicalSize call into dst.
func (s *ImageFileScene) Render(_ context.Context, dst *mockup.Pixmap) error {
	s.mu.Lock()
	img, err := s.img, s.err
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if img == nil {
		return fmt.Errorf("preview: %s not loaded", s.Path)
	}
	draw.Draw(dst.RGBA(), dst.Bounds(), img.RGBA(), image.Point{}, draw.Src)
	return nil
}

func (s *ImageFileScene) load() (*mockup.Pixmap, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	img, err := mockup.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("preview: %s: %w", s.Path, err)
	}
	return img, nil
}
