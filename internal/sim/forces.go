package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// jiggle returns a tiny deterministic offset used when two nodes occupy the
// exact same position, so the separating direction is well defined.
func jiggle(i int) float64 {
	if i%2 == 0 {
		return jiggleMagnitude
	}
	return -jiggleMagnitude
}

// applyLinks pulls each connected pair toward LinkDistance. Strength and
// bias follow the degree-weighted defaults of force-directed layouts: high
// degree nodes move less so hubs stay put.
func (e *Engine) applyLinks() {
	for li, l := range e.links {
		src := &e.nodes[l.Source]
		tgt := &e.nodes[l.Target]

		d := r2.Sub(r2.Add(tgt.Pos, tgt.Vel), r2.Add(src.Pos, src.Vel))
		if d.X == 0 && d.Y == 0 {
			d = r2.Vec{X: jiggle(li), Y: jiggle(li + 1)}
		}
		dist := math.Hypot(d.X, d.Y)

		minDeg := math.Min(float64(e.degree[l.Source]), float64(e.degree[l.Target]))
		strength := 1 / math.Max(minDeg, 1)
		scale := (dist - LinkDistance) / dist * e.alpha * strength
		d = r2.Scale(scale, d)

		bias := float64(e.degree[l.Source]) / float64(e.degree[l.Source]+e.degree[l.Target])
		tgt.Vel = r2.Sub(tgt.Vel, r2.Scale(bias, d))
		src.Vel = r2.Add(src.Vel, r2.Scale(1-bias, d))
	}
}

// applyCharge applies pairwise many-body force with a 1/r falloff. Direct
// O(n²) summation: graphs here are tens of nodes, far below the point where
// a Barnes-Hut approximation would pay off.
func (e *Engine) applyCharge() {
	if e.chargeStrength == 0 {
		return
	}
	for i := range e.nodes {
		for j := range e.nodes {
			if i == j {
				continue
			}
			d := r2.Sub(e.nodes[j].Pos, e.nodes[i].Pos)
			if d.X == 0 && d.Y == 0 {
				d = r2.Vec{X: jiggle(i), Y: jiggle(j)}
			}
			l2 := d.X*d.X + d.Y*d.Y
			w := e.chargeStrength * e.alpha / l2
			e.nodes[i].Vel = r2.Add(e.nodes[i].Vel, r2.Scale(w, d))
		}
	}
}

// applyCenter translates the whole layout so its centroid sits on the
// viewport center. Pinned nodes are excluded from the centroid so a drag
// does not shove the rest of the graph around.
func (e *Engine) applyCenter() {
	var sum r2.Vec
	free := 0
	for i := range e.nodes {
		if e.nodes[i].Pinned != nil {
			continue
		}
		sum = r2.Add(sum, e.nodes[i].Pos)
		free++
	}
	if free == 0 {
		return
	}
	shift := r2.Sub(e.center, r2.Scale(1/float64(free), sum))
	for i := range e.nodes {
		if e.nodes[i].Pinned != nil {
			continue
		}
		e.nodes[i].Pos = r2.Add(e.nodes[i].Pos, shift)
	}
}

// applyCollide separates any pair of node circles closer than twice the
// collision radius, splitting the correction evenly between the pair.
func (e *Engine) applyCollide() {
	minSep := 2 * CollideRadius
	for i := range e.nodes {
		for j := i + 1; j < len(e.nodes); j++ {
			a := &e.nodes[i]
			b := &e.nodes[j]

			d := r2.Sub(r2.Add(b.Pos, b.Vel), r2.Add(a.Pos, a.Vel))
			if d.X == 0 && d.Y == 0 {
				d = r2.Vec{X: jiggle(i), Y: jiggle(j)}
			}
			dist := math.Hypot(d.X, d.Y)
			if dist >= minSep {
				continue
			}
			correction := r2.Scale((dist-minSep)/dist*0.5, d)
			a.Vel = r2.Add(a.Vel, correction)
			b.Vel = r2.Sub(b.Vel, correction)
		}
	}
}
