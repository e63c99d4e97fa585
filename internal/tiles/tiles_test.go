package tiles

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/woozymasta/lakemap/internal/geo"

	"github.com/chai2010/webp"
)

func pngTile(t *testing.T, size int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		img.Set(x, x, color.RGBA{R: 0x2e, G: 0x86, B: 0xc1, A: 0xff})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		tpl  string
		tile geo.Tile
		want string
	}{
		{"https://tiles/{z}/{x}/{y}.png", geo.Tile{Z: 3, X: 1, Y: 2}, "https://tiles/3/1/2.png"},
		{"https://{s}.tile/{z}/{x}/{y}.png", geo.Tile{Z: 1, X: 0, Y: 0}, "https://a.tile/1/0/0.png"},
		{"https://{s}.tile/{z}/{x}/{y}.png", geo.Tile{Z: 1, X: 1, Y: 1}, "https://c.tile/1/1/1.png"},
		{"https://tms/{z}/{x}/{tms_y}.png", geo.Tile{Z: 2, X: 1, Y: 0}, "https://tms/2/1/3.png"},
	}

	for _, tt := range tests {
		if got := BuildURL(tt.tpl, tt.tile); got != tt.want {
			t.Errorf("BuildURL(%q, %+v) = %q, want %q", tt.tpl, tt.tile, got, tt.want)
		}
	}
}

func TestMirror(t *testing.T) {
	full := pngTile(t, Size)
	tiny := pngTile(t, 1)
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch {
		case strings.HasPrefix(r.URL.Path, "/1/0/"):
			http.NotFound(w, r)
		case r.URL.Path == "/1/1/0.png":
			_, _ = w.Write(tiny)
		default:
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(full)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	opts := Options{
		URLTemplate: srv.URL + "/{z}/{x}/{y}.png",
		Dir:         dir,
		BBox:        geo.EmptyBBox().Extend(0.1, 0.1).Extend(-0.1, -0.1),
		MaxZoom:     1,
		Concurrency: 2,
	}

	st, err := Mirror(context.Background(), srv.Client(), opts)
	if err != nil {
		t.Fatalf("Mirror: %v", err)
	}

	// zoom 0: one tile; zoom 1: (0,0) (0,1) missing, (1,0) empty, (1,1) written
	if st.Written != 2 || st.Missing != 3 || st.Failed != 0 {
		t.Errorf("unexpected stats %+v", st)
	}

	data, err := os.ReadFile(Path(dir, geo.Tile{Z: 1, X: 1, Y: 1}))
	if err != nil {
		t.Fatalf("expected mirrored tile: %v", err)
	}
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("mirrored tile is not webp: %v", err)
	}
	if img.Bounds().Dx() != Size {
		t.Errorf("Expected %dpx tile, got %d", Size, img.Bounds().Dx())
	}

	if _, err := os.Stat(Path(dir, geo.Tile{Z: 1, X: 0, Y: 0})); !os.IsNotExist(err) {
		t.Error("missing upstream tile should not be written")
	}

	before := hits.Load()
	st, err = Mirror(context.Background(), srv.Client(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if st.Cached != 2 {
		t.Errorf("second run should reuse 2 cached tiles, got %+v", st)
	}
	if hits.Load()-before != 3 {
		t.Errorf("second run should only request the uncached tiles, got %d requests", hits.Load()-before)
	}
}

func TestMirrorValidation(t *testing.T) {
	ctx := context.Background()

	if _, err := Mirror(ctx, http.DefaultClient, Options{Dir: t.TempDir()}); err == nil {
		t.Error("missing template should fail")
	}
	if _, err := Mirror(ctx, http.DefaultClient, Options{URLTemplate: "x", Dir: t.TempDir(), BBox: geo.EmptyBBox()}); err == nil {
		t.Error("empty bbox should fail")
	}
}

func TestTransparentTile(t *testing.T) {
	data := TransparentTile()
	if len(data) == 0 {
		t.Fatal("transparent tile should not be empty")
	}

	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, _, _, a := img.At(10, 10).RGBA(); a != 0 {
		t.Errorf("tile should be transparent, alpha %d", a)
	}
}
