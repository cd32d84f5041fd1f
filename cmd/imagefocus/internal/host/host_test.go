package host

import (
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/recera/imagefocus/cmd/imagefocus/internal/config"
	"github.com/recera/imagefocus/pkg/imagefocus"
)

const page = `<html><body>
<div id="markdownBody" class="markdownBody">
  <figure><img src="one.png" width="400" height="300" title="One"></figure>
  <figure><img src="two.png" width="4000" height="3000"></figure>
</div>
</body></html>`

func openPage(t *testing.T) *Page {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := Open(path, config.DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestOpen_RegistersImages(t *testing.T) {
	p := openPage(t)
	s := p.State()
	if len(s.Images) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(s.Images))
	}
	if s.Images[0].Src != "one.png" || s.Images[0].Title != "One" || !s.Images[0].Gallery {
		t.Errorf("Unexpected first image: %+v", s.Images[0])
	}
	if s.State != imagefocus.Unfocused || s.Selected != -1 {
		t.Errorf("Expected nothing focused, got %v", s.State)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.html"), config.DefaultConfig(), nil); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestPage_DrivesOverlay(t *testing.T) {
	p := openPage(t)

	p.Focus(0)
	s := p.State()
	if s.State != imagefocus.FocusedGallery || s.Selected != 0 {
		t.Fatalf("Expected first image focused, got %v at %d", s.State, s.Selected)
	}
	if s.Fragment != "if_slide_1" {
		t.Errorf("Expected fragment if_slide_1, got %q", s.Fragment)
	}

	p.Key("ArrowRight")
	s = p.State()
	if s.Index != 1 {
		t.Fatalf("Expected index 1, got %d", s.Index)
	}
	fit := s.Transform

	p.Wheel(-400)
	zoomed := p.State().Transform
	if zoomed.Width <= fit.Width {
		t.Fatalf("Expected zoom in, got %v after %v", zoomed.Width, fit.Width)
	}

	p.Pan(30, 0)
	panned := p.State().Transform
	if panned.Left == zoomed.Left {
		t.Error("Expected pan to move the image")
	}

	p.Key(" ")
	if got := p.State().Transform; got != fit {
		t.Errorf("Expected reset to %+v, got %+v", fit, got)
	}

	p.Key("Escape")
	if p.State().Engaged {
		t.Error("Expected overlay to exit")
	}
}

func TestPage_PanIgnoredWhenFitted(t *testing.T) {
	p := openPage(t)
	p.Focus(0)
	p.Pan(30, 30)
	if !p.State().Engaged {
		t.Error("Expected pan on a fitted image not to close the overlay")
	}
}

func TestOpenAt_FocusesSlideFromFragment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		fragment string
		want     int
	}{
		{"if_slide_2", 1},
		{"if_slide_1", 0},
		{"if_slide_3", -1},
		{"intro", -1},
	}
	for _, tt := range tests {
		t.Run(tt.fragment, func(t *testing.T) {
			p, err := OpenAt(path, tt.fragment, config.DefaultConfig(), logger)
			if err != nil {
				t.Fatalf("OpenAt failed: %v", err)
			}
			defer p.Close()
			if s := p.State(); s.Selected != tt.want {
				t.Errorf("Expected image %d focused, got %d", tt.want, s.Selected)
			}
		})
	}
}

func TestPage_ResizeRefitsOnRotation(t *testing.T) {
	p := openPage(t)
	p.Focus(1)
	before := p.State().Transform

	p.Resize(800, 1280)
	after := p.State().Transform
	if after.Width >= before.Width {
		t.Errorf("Expected narrower fit in portrait, got %.1f then %.1f", before.Width, after.Width)
	}
	if after.Width > 800 {
		t.Errorf("Expected fit within 800 wide viewport, got %.1f", after.Width)
	}
}

func TestOpen_MarkdownWithLocalImages(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "wide.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 640, 320))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	md := "# Post\n\n![Wide](wide.png \"A wide one\")\n\n![Gone](missing.png)\n"
	path := filepath.Join(dir, "post.md")
	if err := os.WriteFile(path, []byte(md), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Open(path, config.DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer p.Close()

	s := p.State()
	if len(s.Images) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(s.Images))
	}
	if s.Images[0].Width != 640 || s.Images[0].Height != 320 {
		t.Errorf("Expected probed size 640x320, got %.0fx%.0f", s.Images[0].Width, s.Images[0].Height)
	}
	if s.Images[1].Width != 0 {
		t.Errorf("Expected unknown size for a missing file, got %.0f", s.Images[1].Width)
	}

	p.Focus(0)
	s = p.State()
	if s.State != imagefocus.FocusedGallery {
		t.Fatalf("Expected gallery focus, got %v", s.State)
	}
	if s.Transform.Width != 640 || s.Transform.Height != 320 {
		t.Errorf("Expected natural size fit 640x320, got %.0fx%.0f", s.Transform.Width, s.Transform.Height)
	}
}
