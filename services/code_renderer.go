package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"net/http"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
)

// Rendering constants
const (
	barcodeWidth  = 400
	barcodeHeight = 120
	qrSize        = 512

	// sheetGutter is the fixed spacing unit of the composed code sheet
	sheetGutter = 24

	labelFontSize = 20

	// Logo overlay bounds as a fraction of the QR width
	minLogoScale     = 0.08
	maxLogoScale     = 0.35
	defaultLogoScale = 0.20

	// Organization logo height relative to the QR on the code sheet
	sheetLogoHeightRatio = 0.9
)

// CodeRenderer rasterizes barcodes, QR codes and the combined code
// sheet. FontPath optionally points at a TTF for labels; when it is
// empty or fails to load, the built-in bitmap face is used instead.
type CodeRenderer struct {
	FontPath string

	httpClient *http.Client
}

// NewCodeRenderer returns a renderer with a bounded HTTP client for
// fetching organization logos
func NewCodeRenderer(fontPath string) *CodeRenderer {
	return &CodeRenderer{
		FontPath:   fontPath,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// RenderBarcode encodes the text as a Code 128 barcode with a visible
// text label beneath the bars
func (r *CodeRenderer) RenderBarcode(text string) (image.Image, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot render empty barcode text")
	}

	encoded, err := code128.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("failed to encode barcode: %w", err)
	}
	// Scaling below the encoded module count is rejected, so long texts
	// (asset ids used as the untagged fallback) widen the target instead.
	width := barcodeWidth
	if modules := encoded.Bounds().Dx(); modules > width {
		width = modules
	}
	scaled, err := barcode.Scale(encoded, width, barcodeHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to scale barcode: %w", err)
	}

	labelHeight := labelFontSize + sheetGutter
	dc := gg.NewContext(width, barcodeHeight+labelHeight)
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(scaled, 0, 0)

	r.setLabelFont(dc)
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(text, float64(width)/2, float64(barcodeHeight)+float64(labelHeight)/2, 0.5, 0.5)

	return dc.Image(), nil
}

// RenderQR encodes the payload as a QR code, optionally overlaying a
// logo. Requesting a logo automatically raises error correction to the
// highest tier so the covered modules stay recoverable.
func (r *CodeRenderer) RenderQR(payload string, logo image.Image, logoScale float64) (image.Image, error) {
	if payload == "" {
		return nil, fmt.Errorf("cannot render empty QR payload")
	}

	level := qrcode.Medium
	if logo != nil {
		level = qrcode.Highest
	}

	code, err := qrcode.New(payload, level)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR payload: %w", err)
	}
	img := code.Image(qrSize)

	if logo == nil {
		return img, nil
	}
	return overlayLogo(img, logo, logoScale), nil
}

// overlayLogo centers the logo over the QR code, scaled to a clamped
// fraction of the QR width and padded with a white margin for contrast
func overlayLogo(qr image.Image, logo image.Image, logoScale float64) image.Image {
	if logoScale <= 0 {
		logoScale = defaultLogoScale
	}
	if logoScale < minLogoScale {
		logoScale = minLogoScale
	}
	if logoScale > maxLogoScale {
		logoScale = maxLogoScale
	}

	qrWidth := qr.Bounds().Dx()
	target := int(float64(qrWidth) * logoScale)
	scaledLogo := scaleToFit(logo, target, target)

	margin := sheetGutter / 3
	padW := scaledLogo.Bounds().Dx() + 2*margin
	padH := scaledLogo.Bounds().Dy() + 2*margin

	dc := gg.NewContextForImage(qr)
	x := float64(qrWidth-padW) / 2
	y := float64(qr.Bounds().Dy()-padH) / 2
	dc.SetColor(color.White)
	dc.DrawRectangle(x, y, float64(padW), float64(padH))
	dc.Fill()
	dc.DrawImage(scaledLogo, int(x)+margin, int(y)+margin)

	return dc.Image()
}

// RenderCodeSheet composes the printable sheet: organization logo (when
// it loads), QR code and label. A logo that is configured but fails to
// load degrades to the logo-less layout rather than failing.
func (r *CodeRenderer) RenderCodeSheet(qr image.Image, label string, logoURL string) (image.Image, error) {
	var logo image.Image
	if logoURL != "" {
		var err error
		logo, err = r.FetchLogo(logoURL)
		if err != nil {
			log.Printf("[WARNING] Code sheet logo unavailable, using plain layout: %v", err)
			logo = nil
		}
	}

	if logo != nil {
		return r.renderSheetWithLogo(qr, logo, label), nil
	}
	return r.renderSheetPlain(qr, label), nil
}

// renderSheetWithLogo places the logo left of the QR, both vertically
// centered, with the label centered beneath
func (r *CodeRenderer) renderSheetWithLogo(qr image.Image, logo image.Image, label string) image.Image {
	qrW := qr.Bounds().Dx()
	qrH := qr.Bounds().Dy()

	logoH := int(float64(qrH) * sheetLogoHeightRatio)
	logoW := logoH * logo.Bounds().Dx() / logo.Bounds().Dy()
	scaledLogo := scaleToFit(logo, logoW, logoH)
	logoW = scaledLogo.Bounds().Dx()
	logoH = scaledLogo.Bounds().Dy()

	maxH := qrH
	if logoH > maxH {
		maxH = logoH
	}

	sheetW := logoW + qrW + 3*sheetGutter
	sheetH := maxH + 3*sheetGutter

	dc := gg.NewContext(sheetW, sheetH)
	dc.SetColor(color.White)
	dc.Clear()

	dc.DrawImage(scaledLogo, sheetGutter, sheetGutter+(maxH-logoH)/2)
	dc.DrawImage(qr, 2*sheetGutter+logoW, sheetGutter+(maxH-qrH)/2)

	r.setLabelFont(dc)
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(label, float64(sheetW)/2, float64(sheetGutter+maxH)+float64(sheetGutter), 0.5, 0.5)

	return dc.Image()
}

// renderSheetPlain centers the QR alone with the label beneath it
func (r *CodeRenderer) renderSheetPlain(qr image.Image, label string) image.Image {
	qrW := qr.Bounds().Dx()
	qrH := qr.Bounds().Dy()

	measure := gg.NewContext(1, 1)
	r.setLabelFont(measure)
	labelW, labelH := measure.MeasureString(label)

	sheetW := qrW
	if int(labelW) > sheetW {
		sheetW = int(labelW)
	}
	sheetW += 2 * sheetGutter
	sheetH := qrH + int(labelH) + 3*sheetGutter

	dc := gg.NewContext(sheetW, sheetH)
	dc.SetColor(color.White)
	dc.Clear()

	dc.DrawImage(qr, (sheetW-qrW)/2, sheetGutter)

	r.setLabelFont(dc)
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(label, float64(sheetW)/2, float64(sheetGutter+qrH)+float64(sheetGutter), 0.5, 0.5)

	return dc.Image()
}

// FetchLogo downloads and decodes an image from the given URL
func (r *CodeRenderer) FetchLogo(url string) (image.Image, error) {
	resp, err := r.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch logo: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo: %w", err)
	}
	return img, nil
}

// setLabelFont loads the configured TTF for labels, falling back to
// gg's built-in bitmap face when unavailable
func (r *CodeRenderer) setLabelFont(dc *gg.Context) {
	if r.FontPath == "" {
		return
	}
	if err := dc.LoadFontFace(r.FontPath, labelFontSize); err != nil {
		// Built-in face stays active
		return
	}
}

// scaleToFit scales an image down (or up) to fit the given bounds,
// preserving aspect ratio
func scaleToFit(img image.Image, maxW, maxH int) image.Image {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	if srcW <= 0 || srcH <= 0 || maxW <= 0 || maxH <= 0 {
		return img
	}

	scale := float64(maxW) / float64(srcW)
	if s := float64(maxH) / float64(srcH); s < scale {
		scale = s
	}
	dstW := int(float64(srcW) * scale)
	dstH := int(float64(srcH) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// EncodePNG serializes an image to PNG bytes
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
