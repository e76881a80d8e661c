package image

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/image/bmp"
)

const testSVG = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="16" height="16" viewBox="0 0 16 16">
  <rect x="2" y="2" width="12" height="12" fill="#ff0000"/>
</svg>`

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

func encodeBMP(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test bmp: %v", err)
	}
	return buf.Bytes()
}

func TestFetch_PNGPassthrough(t *testing.T) {
	data := encodePNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The catalog download link redirects to the real image path.
		if r.URL.Path == "/emojis/12-royals/download" {
			http.Redirect(w, r, "/uploads/royals.png", http.StatusFound)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), 128)
	asset, err := f.Fetch(context.Background(), srv.URL+"/emojis/12-royals/download")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if asset.Name != "royals" {
		t.Errorf("Name = %q, want name from redirected URL", asset.Name)
	}
	if !bytes.Equal(asset.Data, data) {
		t.Error("png payload should pass through unmodified")
	}
	if asset.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", asset.ContentType)
	}
}

func TestFetch_SVGIsRasterized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/download" {
			http.Redirect(w, r, "/uploads/square.svg", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte(testSVG))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), 64)
	asset, err := f.Fetch(context.Background(), srv.URL+"/download")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(asset.Data))
	if err != nil {
		t.Fatalf("result is not a decodable png: %v", err)
	}
	if got := img.Bounds().Dx(); got != 64 {
		t.Errorf("raster width = %d, want configured size 64", got)
	}
	if asset.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", asset.ContentType)
	}
}

func TestFetch_BMPIsReencoded(t *testing.T) {
	data := encodeBMP(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/download" {
			http.Redirect(w, r, "/uploads/pixel.bmp", http.StatusFound)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), 128)
	asset, err := f.Fetch(context.Background(), srv.URL+"/download")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if _, err := png.Decode(bytes.NewReader(asset.Data)); err != nil {
		t.Fatalf("bmp was not re-encoded to png: %v", err)
	}
	if asset.Name != "pixel" {
		t.Errorf("Name = %q, want %q", asset.Name, "pixel")
	}
}

func TestFetch_UnsupportedExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/download" {
			http.Redirect(w, r, "/uploads/doc.tiff", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("II*\x00 not really a tiff"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), 128)
	_, err := f.Fetch(context.Background(), srv.URL+"/download")
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("Fetch() error = %v, want ErrDownload", err)
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Fetch() error = %v, want ErrUnsupportedFormat cause", err)
	}
}

func TestFetch_HTTPErrorIsDownloadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), 128)
	_, err := f.Fetch(context.Background(), srv.URL+"/gone")
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("Fetch() error = %v, want ErrDownload", err)
	}
}
