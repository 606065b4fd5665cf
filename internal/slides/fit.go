package slides

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	_ "image/jpeg" // downloaded source images may arrive as jpeg

	"github.com/nfnt/resize"
)

// letterboxBackground is the fill color behind a fitted image when its
// aspect ratio doesn't match the target frame.
var letterboxBackground = color.RGBA{R: 0, G: 0, B: 0, A: 255}

// decodeImage sniffs the format (png/jpeg) and decodes raw bytes.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// meetsMinimumResolution enforces VideoConstants.MIN_WIDTH/MIN_HEIGHT before
// a downloaded image is accepted.
func meetsMinimumResolution(img image.Image, minWidth, minHeight int) bool {
	b := img.Bounds()
	return b.Dx() >= minWidth && b.Dy() >= minHeight
}

// fitToFrame scales img to fit within targetW x targetH preserving aspect
// ratio, then letterboxes it onto an opaque canvas of exactly that size —
// the teacher's pack has no image-compositing library, so the canvas
// composite itself is stdlib image/draw; only the resize step uses a
// third-party scaler (nfnt/resize, the sole image-processing library
// anywhere in the example pack).
func fitToFrame(img image.Image, targetW, targetH int) image.Image {
	srcB := img.Bounds()
	srcW, srcH := srcB.Dx(), srcB.Dy()

	scale := float64(targetW) / float64(srcW)
	if alt := float64(targetH) / float64(srcH); alt < scale {
		scale = alt
	}

	scaledW := uint(float64(srcW) * scale)
	scaledH := uint(float64(srcH) * scale)
	scaled := resize.Resize(scaledW, scaledH, img, resize.Lanczos3)

	canvas := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: letterboxBackground}, image.Point{}, draw.Src)

	offsetX := (targetW - int(scaledW)) / 2
	offsetY := (targetH - int(scaledH)) / 2
	dstRect := image.Rect(offsetX, offsetY, offsetX+int(scaledW), offsetY+int(scaledH))
	draw.Draw(canvas, dstRect, scaled, image.Point{}, draw.Src)

	return canvas
}

// placeholderImage renders a flat dark-gray frame, used when a source image
// download fails and the section has no slide_prompt to fall back on.
func placeholderImage(targetW, targetH int) image.Image {
	canvas := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.RGBA{R: 40, G: 40, B: 40, A: 255}}, image.Point{}, draw.Src)
	return canvas
}

func savePNG(path string, img image.Image) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
