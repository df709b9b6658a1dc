package mockup

import (
	"image"
	"time"
)

// TemplateSnapshot is a rasterized frame of a design, produced outside the
// engine (typically by the preview synchronizer). The engine never mutates
// it.
type TemplateSnapshot struct {
	TemplateID string
	Image      *Pixmap
	Width      int
	Height     int
	UpdatedAt  time.Time
}

// NewSnapshot wraps img as a snapshot stamped with the current time.
func NewSnapshot(templateID string, img image.Image) *TemplateSnapshot {
	pm := FromImage(img)
	return &TemplateSnapshot{
		TemplateID: templateID,
		Image:      pm,
		Width:      pm.Width(),
		Height:     pm.Height(),
		UpdatedAt:  time.Now(),
	}
}

// Snapshots maps insert-area keys (see InsertArea.Key) to snapshots.
type Snapshots map[string]*TemplateSnapshot

// lookup returns the usable snapshot for key, or nil.
func (s Snapshots) lookup(key string) *TemplateSnapshot {
	snap := s[key]
	if snap == nil || snap.Image == nil || snap.Image.Width() == 0 || snap.Image.Height() == 0 {
		return nil
	}
	return snap
}
