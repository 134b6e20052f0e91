package csg

import "github.com/BRL-CAD/brlcad-sub154/pkg/core"

// Union returns every distance inside a or b. Intervals that touch within
// tolerance are merged into one.
func (a Set) Union(b Set, tol core.Tolerance) Set {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(Set, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return normalize(out, tol)
}

// Intersect returns the distances inside both a and b. Overlaps no longer
// than the distance tolerance are treated as touching and produce nothing.
func (a Set) Intersect(b Set, tol core.Tolerance) Set {
	var out Set
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		x, y := a[i], b[j]

		iv := x
		if y.In.Dist > x.In.Dist {
			iv.In, iv.InSolid, iv.InFlip = y.In, y.InSolid, y.InFlip
		}
		if y.Out.Dist < x.Out.Dist {
			iv.Out, iv.OutSolid, iv.OutFlip = y.Out, y.OutSolid, y.OutFlip
		}
		if iv.Out.Dist-iv.In.Dist > tol.Dist {
			out = append(out, iv)
		}

		if x.Out.Dist < y.Out.Dist {
			i++
		} else {
			j++
		}
	}
	return out
}

// Subtract returns the distances inside a but not inside b. Where b cuts
// an interval the new boundary takes b's hit with its flip toggled.
// Pieces no longer than the distance tolerance are dropped, and intervals
// that only touch b are left unchanged.
func (a Set) Subtract(b Set, tol core.Tolerance) Set {
	if len(a) == 0 {
		return nil
	}
	if len(b) == 0 {
		out := make(Set, len(a))
		copy(out, a)
		return out
	}

	out := make(Set, 0, len(a))
	for _, cur := range a {
		alive := true
		for _, cut := range b {
			if cut.Out.Dist <= cur.In.Dist+tol.Dist {
				continue
			}
			if cut.In.Dist >= cur.Out.Dist-tol.Dist {
				break
			}

			if cut.In.Dist-cur.In.Dist > tol.Dist {
				left := cur
				left.Out, left.OutSolid, left.OutFlip = cut.In, cut.InSolid, !cut.InFlip
				out = append(out, left)
			}
			if cur.Out.Dist-cut.Out.Dist > tol.Dist {
				cur.In, cur.InSolid, cur.InFlip = cut.Out, cut.OutSolid, !cut.OutFlip
				continue
			}
			alive = false
			break
		}
		if alive {
			out = append(out, cur)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
