// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package psd

// buildTree folds the flat bottom-to-top record list into groups. A
// bounding divider opens a group; the folder record that follows its
// children closes it. Unbalanced dividers and nesting beyond MaxDepth are
// repaired with warnings.
func (d *decoder) buildTree(records []*record) []Layer {
	stack := [][]Layer{nil}
	overflow := 0
	for _, rec := range records {
		top := len(stack) - 1
		switch rec.divider {
		case dividerBottom:
			if top >= MaxDepth {
				if overflow == 0 {
					d.warnf("layer groups nested deeper than %d; flattening", MaxDepth)
				}
				overflow++
				continue
			}
			stack = append(stack, nil)
		case dividerOpen, dividerClosed:
			if overflow > 0 {
				overflow--
				continue
			}
			g := &Group{LayerInfo: rec.info, Open: rec.divider == dividerOpen}
			if top == 0 {
				d.warnf("group %q has no start divider", rec.info.Name)
			} else {
				g.Children = stack[top]
				stack = stack[:top]
				top--
			}
			stack[top] = append(stack[top], g)
		default:
			stack[top] = append(stack[top], rec.layer())
		}
	}
	for top := len(stack) - 1; top > 0; top-- {
		d.warnf("unterminated layer group with %d layers", len(stack[top]))
		g := &Group{LayerInfo: LayerInfo{Index: -1, Opacity: 255}, Children: stack[top]}
		stack[top-1] = append(stack[top-1], g)
	}
	return stack[0]
}

func (rec *record) layer() Layer {
	switch rec.kind {
	case kindSmart:
		return &SmartObject{
			LayerInfo:  rec.info,
			UniqueID:   rec.uniqueID,
			PlacedSize: rec.placedSize,
			Transform:  rec.transform,
			NonAffine:  rec.nonAffine,
			Descriptor: rec.desc,
			Preview:    rec.preview,
		}
	case kindText:
		return &Text{LayerInfo: rec.info, Text: rec.text, Preview: rec.preview}
	default:
		return &Pixel{LayerInfo: rec.info, Preview: rec.preview}
	}
}
