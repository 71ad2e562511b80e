package server

import (
	"sync"

	"github.com/ironsheep/hog-detector-mcp/internal/detection"
)

// TemplateCache keeps decoded templates by file path, the way ImageCache keeps
// images. Templates are immutable once loaded, so cached values are shared freely.
type TemplateCache struct {
	mu        sync.RWMutex
	templates map[string]*detection.Template
}

// NewTemplateCache creates an empty cache.
func NewTemplateCache() *TemplateCache {
	return &TemplateCache{templates: make(map[string]*detection.Template)}
}

// Load returns the template stored at path, reading it on first use.
func (c *TemplateCache) Load(path string) (*detection.Template, error) {
	c.mu.RLock()
	t, ok := c.templates[path]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := detection.LoadTemplateFile(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if cached, ok := c.templates[path]; ok {
		t = cached
	} else {
		c.templates[path] = t
	}
	c.mu.Unlock()
	return t, nil
}

// Evict drops the template cached for path so the next Load rereads the file.
func (c *TemplateCache) Evict(path string) {
	c.mu.Lock()
	delete(c.templates, path)
	c.mu.Unlock()
}
