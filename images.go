package chimera

import (
	"fmt"
	"image"
	"net/http"
	"strings"
	"sync"
	"time"

	// Generated assets are PNG; JPEG kept for odd backends.
	_ "image/jpeg"
	_ "image/png"

	"github.com/hajimehoshi/ebiten/v2"
)

// imageCache fetches card images by reference and hands out ebiten images.
// Fetch and decode happen on background goroutines; the decoded pixels are
// uploaded to an ebiten image lazily on the game loop, so Get is safe to
// call from Update/Draw only.
type imageCache struct {
	base  string
	httpc *http.Client

	mu      sync.Mutex
	decoded map[string]image.Image
	failed  map[string]struct{}
	pending map[string]struct{}

	// ready is touched only from the game loop.
	ready map[string]*ebiten.Image
}

func newImageCache(base string) *imageCache {
	return &imageCache{
		base:    strings.TrimRight(base, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		decoded: make(map[string]image.Image),
		failed:  make(map[string]struct{}),
		pending: make(map[string]struct{}),
		ready:   make(map[string]*ebiten.Image),
	}
}

// Get returns the image for ref, or nil while it is still loading (or
// failed). The first call for a ref kicks off the fetch.
func (c *imageCache) Get(ref string) *ebiten.Image {
	if ref == "" {
		return nil
	}
	if img, ok := c.ready[ref]; ok {
		return img
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if src, ok := c.decoded[ref]; ok {
		img := ebiten.NewImageFromImage(src)
		c.ready[ref] = img
		delete(c.decoded, ref)
		return img
	}
	if _, ok := c.failed[ref]; ok {
		return nil
	}
	if _, ok := c.pending[ref]; !ok {
		c.pending[ref] = struct{}{}
		go c.fetch(ref)
	}
	return nil
}

func (c *imageCache) fetch(ref string) {
	src, err := c.download(ref)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, ref)
	if err != nil {
		c.failed[ref] = struct{}{}
		return
	}
	c.decoded[ref] = src
}

func (c *imageCache) download(ref string) (image.Image, error) {
	url := ref
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		url = c.base + "/" + strings.TrimLeft(ref, "/")
	}
	resp, err := c.httpc.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	src, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return src, nil
}
