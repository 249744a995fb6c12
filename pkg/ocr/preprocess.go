package ocr

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// PrepareImage converts a raw photo into a binarized image of the same
// dimensions, optimized for text extraction. Order matters: grayscale,
// 1% autocontrast, 3x3 gaussian smoothing, adaptive threshold, one dilation
// pass to thicken thin printer-font strokes.
func PrepareImage(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImage, path, err)
	}
	gray := imaging.Grayscale(img)
	gray = autocontrast(gray, 0.01)
	gray = imaging.Blur(gray, 0.8)
	bin := adaptiveThreshold(gray, 21, 11)
	return dilate(bin, 1), nil
}

// autocontrast linearly stretches pixel intensities, clipping the given
// fraction of the histogram at each tail so sensor noise does not set the
// bounds.
func autocontrast(img *image.NRGBA, clip float64) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}
	var hist [256]int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			hist[uint8((r+g+bb)/3>>8)]++
		}
	}
	cut := int(float64(w*h) * clip)
	lo, hi := 0, 255
	for n := 0; lo < 255; lo++ {
		n += hist[lo]
		if n > cut {
			break
		}
	}
	for n := 0; hi > 0; hi-- {
		n += hist[hi]
		if n > cut {
			break
		}
	}
	if hi <= lo {
		return img
	}
	scale := 255.0 / float64(hi-lo)
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			v := float64(int((r+g+bb)/3>>8)-lo) * scale
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			p := uint8(v)
			out.Set(x, y, color.NRGBA{R: p, G: p, B: p, A: 255})
		}
	}
	return out
}

// adaptiveThreshold performs a mean adaptive threshold over a window large
// enough to tolerate uneven lighting along a receipt's length.
func adaptiveThreshold(img image.Image, window int, bias int) *image.NRGBA {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	out := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
	half := window / 2
	ints := make([]int, w*h)
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			v := int((r + g + b) / 3 >> 8)
			rowSum += v
			idx := y*w + x
			if y == 0 {
				ints[idx] = rowSum
			} else {
				ints[idx] = ints[(y-1)*w+x] + rowSum
			}
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := x-half, y-half
			x1, y1 := x+half, y+half
			if x0 < 0 {
				x0 = 0
			}
			if y0 < 0 {
				y0 = 0
			}
			if x1 >= w {
				x1 = w - 1
			}
			if y1 >= h {
				y1 = h - 1
			}
			A := ints[y0*w+x0]
			B := ints[y0*w+x1]
			C := ints[y1*w+x0]
			D := ints[y1*w+x1]
			sum := D - B - C + A
			mean := sum / ((x1 - x0 + 1) * (y1 - y0 + 1))
			rv, gv, bv, _ := img.At(x, y).RGBA()
			pix := int((rv + gv + bv) / 3 >> 8)
			th := mean - bias
			if th < 0 {
				th = 0
			}
			var c color.NRGBA
			if pix < th {
				c = color.NRGBA{0, 0, 0, 255}
			} else {
				c = color.NRGBA{255, 255, 255, 255}
			}
			out.Set(x, y, c)
		}
	}
	return out
}

// dilate thickens dark strokes with a 2x2 kernel, passes times.
func dilate(img *image.NRGBA, passes int) *image.NRGBA {
	if passes <= 0 {
		return img
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	cur := img
	for p := 0; p < passes; p++ {
		next := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				black := false
				for _, d := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
					x2 := x + d[0]
					y2 := y + d[1]
					if x2 >= w || y2 >= h {
						continue
					}
					rv, gv, bv, _ := cur.At(x2, y2).RGBA()
					if rv+gv+bv == 0 {
						black = true
						break
					}
				}
				if black {
					next.Set(x, y, color.NRGBA{0, 0, 0, 255})
				}
			}
		}
		cur = next
	}
	return cur
}
