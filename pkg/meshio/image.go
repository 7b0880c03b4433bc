package meshio

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/chazu/texeltools/pkg/uvmesh"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ReadImage reads the header of an image file and returns its size. Only
// the header is decoded.
func ReadImage(path string) (*uvmesh.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("meshio: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("meshio: %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("meshio: %s: %s image has no pixels", path, format)
	}
	return &uvmesh.Image{
		Name:   filepath.Base(path),
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// FileImageResolver finds an object's image on disk from the texture its
// material names. Relative texture paths are taken from Dir. Results,
// including failures, are cached per path.
type FileImageResolver struct {
	Dir string

	mu    sync.Mutex
	cache map[string]cached
}

type cached struct {
	img *uvmesh.Image
	err error
}

// NewFileImageResolver returns a resolver reading textures below dir.
func NewFileImageResolver(dir string) *FileImageResolver {
	return &FileImageResolver{Dir: dir}
}

// Resolve returns the object's own image if it has one, otherwise the
// image read from its texture file.
func (r *FileImageResolver) Resolve(o *uvmesh.Object) (*uvmesh.Image, bool) {
	if o.Image != nil && o.Image.Width > 0 && o.Image.Height > 0 {
		return o.Image, true
	}
	if o.Texture == "" {
		return nil, false
	}
	img, err := r.Load(o.Texture)
	return img, err == nil
}

// Load reads the image for a texture path, using the cache.
func (r *FileImageResolver) Load(texture string) (*uvmesh.Image, error) {
	path := texture
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.Dir, path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.cache[path]; ok {
		return c.img, c.err
	}
	if r.cache == nil {
		r.cache = make(map[string]cached)
	}
	img, err := ReadImage(path)
	r.cache[path] = cached{img: img, err: err}
	return img, err
}

// Attach sets Image on every object whose texture can be read and
// returns the errors for those that could not.
func (r *FileImageResolver) Attach(objects []*uvmesh.Object) []error {
	var errs []error
	for _, o := range objects {
		if o.Image != nil || o.Texture == "" {
			continue
		}
		img, err := r.Load(o.Texture)
		if err != nil {
			errs = append(errs, fmt.Errorf("object %q: %w", o.Name, err))
			continue
		}
		o.Image = img
	}
	return errs
}
