// Package imagesize reads the pixel dimensions of local image files without
// decoding the pixels, standing in for the browser's image decoder in the
// headless host
package imagesize

import (
	"errors"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	// Formats recognized by image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrRemote is returned for sources that are not local files
var ErrRemote = errors.New("not a local image")

// Probe returns the dimensions of the image file at path
func Probe(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Resolve maps an img src to a file under baseDir. Sources with a scheme,
// such as http or data, are ErrRemote.
func Resolve(baseDir, src string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return "", err
	}
	if u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", ErrRemote
	}
	return filepath.Join(baseDir, filepath.FromSlash(strings.TrimPrefix(u.Path, "/"))), nil
}

// ProbeSrc resolves src against baseDir and probes the file
func ProbeSrc(baseDir, src string) (width, height int, err error) {
	path, err := Resolve(baseDir, src)
	if err != nil {
		return 0, 0, err
	}
	return Probe(path)
}
