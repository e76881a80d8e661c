package image

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/bmp"
)

// prepare turns a downloaded payload into a Slack-accepted Asset. Slack only
// supports gif, jpeg, and png: those pass through untouched, svg is
// rasterized, bmp is re-encoded, everything else is rejected.
func (f *Fetcher) prepare(name, ext string, data []byte) (*Asset, error) {
	sniffed := http.DetectContentType(data)

	switch {
	case ext == ".gif" || ext == ".jpg" || ext == ".jpeg" || ext == ".png":
		return &Asset{Name: name, Data: data, ContentType: sniffed}, nil

	case ext == ".svg" || isSVG(sniffed, data):
		out, err := f.rasterizeSVG(data)
		if err != nil {
			return nil, fmt.Errorf("rasterizing svg: %w", err)
		}
		return &Asset{Name: name, Data: out, ContentType: "image/png"}, nil

	case ext == ".bmp" || sniffed == "image/bmp":
		out, err := reencodeBMP(data)
		if err != nil {
			return nil, fmt.Errorf("re-encoding bmp: %w", err)
		}
		return &Asset{Name: name, Data: out, ContentType: "image/png"}, nil

	case ext == "":
		// Extensionless final URL: trust the sniffer.
		switch sniffed {
		case "image/gif", "image/jpeg", "image/png":
			return &Asset{Name: name, Data: data, ContentType: sniffed}, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, sniffed)

	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, ext, sniffed)
	}
}

// isSVG catches svg served without an extension. http.DetectContentType has
// no svg signature, so look at the document itself.
func isSVG(sniffed string, data []byte) bool {
	if strings.Contains(sniffed, "text/xml") || strings.Contains(sniffed, "text/plain") {
		head := data
		if len(head) > 512 {
			head = head[:512]
		}
		return bytes.Contains(head, []byte("<svg"))
	}
	return false
}

// rasterizeSVG renders a vector image to a fixed-size PNG bitmap.
func (f *Fetcher) rasterizeSVG(data []byte) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}

	size := f.rasterSize
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

func reencodeBMP(data []byte) ([]byte, error) {
	img, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding bmp: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
