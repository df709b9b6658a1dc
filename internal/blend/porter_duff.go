// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blend

// SourceOver composites a premultiplied source pixel over a premultiplied
// destination pixel: S + D*(1-Sa).
func SourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return blendSourceOver(sr, sg, sb, sa, dr, dg, db, da)
}

func blendSourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	if sa == 255 {
		return sr, sg, sb, sa
	}
	if sa == 0 {
		return dr, dg, db, da
	}
	invSa := inv255(sa)
	return addDiv255(sr, mulDiv255(dr, invSa)),
		addDiv255(sg, mulDiv255(dg, invSa)),
		addDiv255(sb, mulDiv255(db, invSa)),
		addDiv255(sa, mulDiv255(da, invSa))
}
