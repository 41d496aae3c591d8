package raster

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/jpeg"
	"strings"
)

// DefaultJPEGQuality is the JPEG quality used when the caller does not
// request one.
const DefaultJPEGQuality = 85

// ImageFormat identifies the codec used for embedded page images.
type ImageFormat string

const (
	// FormatJPEG stores pages as lossy JPEG streams.
	FormatJPEG ImageFormat = "jpeg"

	// FormatLossless stores pages as deflate-compressed raw RGB.
	FormatLossless ImageFormat = "lossless"
)

// Stream filters understood by the document assembler.
const (
	filterDCT   = "DCTDecode"
	filterFlate = "FlateDecode"
)

// EncodedImage is a compressed pixel buffer ready for embedding,
// together with the stream parameters the assembler writes alongside
// it.
type EncodedImage struct {
	Format           ImageFormat
	Filter           string
	ColorSpace       string
	BitsPerComponent int
	Width            int
	Height           int
	Data             []byte
}

// Encoder compresses a rendered page into an embeddable image stream.
// Implementations must be deterministic for identical input buffers.
type Encoder interface {
	Format() ImageFormat
	Encode(img image.Image) (EncodedImage, error)
}

// EncoderFor returns the encoder matching a caller-supplied format
// name. The empty format selects JPEG. quality applies to JPEG only;
// zero selects the default.
func EncoderFor(format string, quality int) (Encoder, error) {
	if quality < 0 || quality > 100 {
		return nil, &ConfigError{Reason: fmt.Sprintf("jpeg quality must be between 1 and 100, got %d", quality)}
	}
	switch ImageFormat(strings.ToLower(strings.TrimSpace(format))) {
	case "", "jpg", FormatJPEG:
		return &JPEGEncoder{Quality: quality}, nil
	case FormatLossless:
		return &FlateEncoder{}, nil
	default:
		return nil, &ConfigError{Reason: fmt.Sprintf("unsupported image format %q (use jpeg or lossless)", format)}
	}
}

// JPEGEncoder compresses pages with the standard JPEG codec.
type JPEGEncoder struct {
	// Quality is the JPEG quality from 1 to 100. Values below one fall
	// back to DefaultJPEGQuality.
	Quality int
}

func (e *JPEGEncoder) Format() ImageFormat { return FormatJPEG }

func (e *JPEGEncoder) Encode(img image.Image) (EncodedImage, error) {
	quality := e.Quality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return EncodedImage{}, err
	}
	b := img.Bounds()
	return EncodedImage{
		Format:           FormatJPEG,
		Filter:           filterDCT,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Width:            b.Dx(),
		Height:           b.Dy(),
		Data:             buf.Bytes(),
	}, nil
}

// FlateEncoder compresses pages losslessly as deflated 24-bit RGB.
type FlateEncoder struct{}

func (e *FlateEncoder) Format() ImageFormat { return FormatLossless }

func (e *FlateEncoder) Encode(img image.Image) (EncodedImage, error) {
	b := img.Bounds()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(rgbBytes(img)); err != nil {
		return EncodedImage{}, err
	}
	if err := zw.Close(); err != nil {
		return EncodedImage{}, err
	}
	return EncodedImage{
		Format:           FormatLossless,
		Filter:           filterFlate,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Width:            b.Dx(),
		Height:           b.Dy(),
		Data:             buf.Bytes(),
	}, nil
}

// rgbBytes flattens an image into row-major 24-bit RGB samples.
func rgbBytes(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, 0, w*h*3)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < h; y++ {
			row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
			for x := 0; x < w*4; x += 4 {
				out = append(out, row[x], row[x+1], row[x+2])
			}
		}
		return out
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out = append(out, uint8(r>>8), uint8(g>>8), uint8(bl>>8))
		}
	}
	return out
}
