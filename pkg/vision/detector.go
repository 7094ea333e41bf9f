package vision

import (
	"image"
)

// Region is the largest dark component found in a strip.
type Region struct {
	X    int // Centroid x in image coordinates (floor of the mean x)
	Area int // Pixel count
	MinX int // Leftmost pixel column
	MaxX int // Rightmost pixel column
}

// Detector finds the dominant dark region in thin horizontal strips.
//
// It keeps its scratch buffers between calls so that steady-state detection
// does not allocate. A Detector is not safe for concurrent use.
type Detector struct {
	mode      string
	threshold uint8
	lower     [3]uint8
	upper     [3]uint8
	minArea   int

	mask    []bool
	visited []bool
	queue   []int32
}

// NewDetector creates a detector for the binarization settings in cfg.
func NewDetector(cfg Config) *Detector {
	minArea := cfg.MinArea
	if minArea < 1 {
		minArea = 1
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeGray
	}
	return &Detector{
		mode:      mode,
		threshold: cfg.Threshold,
		lower:     cfg.DarkLower,
		upper:     cfg.DarkUpper,
		minArea:   minArea,
	}
}

// DetectGray binarizes strip of gray (pixels below the threshold are line)
// and returns the largest region. Coordinates are those of gray; the strip
// is clipped to its bounds.
func (d *Detector) DetectGray(gray *image.Gray, strip image.Rectangle) (Region, bool) {
	r := strip.Intersect(gray.Bounds())
	if r.Empty() {
		return Region{}, false
	}

	w, h := r.Dx(), r.Dy()
	mask := d.prepare(w * h)
	for y := 0; y < h; y++ {
		off := gray.PixOffset(r.Min.X, r.Min.Y+y)
		row := gray.Pix[off : off+w]
		for x, v := range row {
			mask[y*w+x] = v < d.threshold
		}
	}

	return d.largest(w, h, r.Min.X)
}

// DetectRange marks pixels whose RGB channels all fall inside the configured
// dark range and returns the largest region.
func (d *Detector) DetectRange(img image.Image, strip image.Rectangle) (Region, bool) {
	r := strip.Intersect(img.Bounds())
	if r.Empty() {
		return Region{}, false
	}

	w, h := r.Dx(), r.Dy()
	mask := d.prepare(w * h)

	switch src := img.(type) {
	case *image.RGBA:
		d.maskPix(mask, src.Pix, src.Stride, src.PixOffset(r.Min.X, r.Min.Y), w, h)
	case *image.NRGBA:
		d.maskPix(mask, src.Pix, src.Stride, src.PixOffset(r.Min.X, r.Min.Y), w, h)
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				cr, cg, cb, _ := img.At(r.Min.X+x, r.Min.Y+y).RGBA()
				mask[y*w+x] = d.inRange(uint8(cr>>8), uint8(cg>>8), uint8(cb>>8))
			}
		}
	}

	return d.largest(w, h, r.Min.X)
}

func (d *Detector) maskPix(mask []bool, pix []uint8, stride, start, w, h int) {
	for y := 0; y < h; y++ {
		off := start + y*stride
		for x := 0; x < w; x++ {
			p := pix[off+x*4 : off+x*4+3]
			mask[y*w+x] = d.inRange(p[0], p[1], p[2])
		}
	}
}

func (d *Detector) inRange(r, g, b uint8) bool {
	return r >= d.lower[0] && r <= d.upper[0] &&
		g >= d.lower[1] && g <= d.upper[1] &&
		b >= d.lower[2] && b <= d.upper[2]
}

// prepare sizes the scratch buffers for an n-pixel strip and clears the
// visited marks. The mask is fully overwritten by the caller.
func (d *Detector) prepare(n int) []bool {
	if cap(d.mask) < n {
		d.mask = make([]bool, n)
		d.visited = make([]bool, n)
		d.queue = make([]int32, 0, n)
	}
	d.mask = d.mask[:n]
	d.visited = d.visited[:n]
	clear(d.visited)
	return d.mask
}

// largest labels 8-connected foreground components of the w*h mask and
// returns the one with the most pixels. Components are discovered column by
// column, and only a strictly larger area replaces the current best, so
// equal areas resolve to the leftmost component.
func (d *Detector) largest(w, h, originX int) (Region, bool) {
	mask, visited := d.mask, d.visited

	var best Region
	found := false

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			idx := y*w + x
			if !mask[idx] || visited[idx] {
				continue
			}

			visited[idx] = true
			queue := append(d.queue[:0], int32(idx))
			area, sumX := 0, 0
			minX, maxX := x, x

			for k := 0; k < len(queue); k++ {
				p := int(queue[k])
				px, py := p%w, p/w
				area++
				sumX += px
				if px < minX {
					minX = px
				}
				if px > maxX {
					maxX = px
				}

				for ny := py - 1; ny <= py+1; ny++ {
					if ny < 0 || ny >= h {
						continue
					}
					for nx := px - 1; nx <= px+1; nx++ {
						if nx < 0 || nx >= w {
							continue
						}
						n := ny*w + nx
						if mask[n] && !visited[n] {
							visited[n] = true
							queue = append(queue, int32(n))
						}
					}
				}
			}
			d.queue = queue

			if area < d.minArea {
				continue
			}
			if !found || area > best.Area {
				best = Region{
					X:    originX + sumX/area,
					Area: area,
					MinX: originX + minX,
					MaxX: originX + maxX,
				}
				found = true
			}
		}
	}

	return best, found
}
