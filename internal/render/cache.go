package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxIdle bounds the idle renderers kept per option set
const maxIdle = 4

// rendererCache keeps idle renderers per option set. A TermRenderer cannot
// render concurrently, so every call checks one out and hands it back after.
type rendererCache struct {
	mu   sync.Mutex
	idle map[Options][]*glamour.TermRenderer
}

var renderers = &rendererCache{idle: make(map[Options][]*glamour.TermRenderer)}

// cacheOptions maps equivalent option sets onto one key
func cacheOptions(opts Options) Options {
	if opts.Style == "" {
		opts.Style = StyleDark
	}
	return opts
}

func (c *rendererCache) acquire(opts Options) (*glamour.TermRenderer, error) {
	opts = cacheOptions(opts)

	c.mu.Lock()
	if list := c.idle[opts]; len(list) > 0 {
		r := list[len(list)-1]
		c.idle[opts] = list[:len(list)-1]
		c.mu.Unlock()
		return r, nil
	}
	c.mu.Unlock()

	return createRenderer(opts)
}

func (c *rendererCache) release(opts Options, r *glamour.TermRenderer) {
	opts = cacheOptions(opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	if list := c.idle[opts]; len(list) < maxIdle {
		c.idle[opts] = append(list, r)
	}
}

func (c *rendererCache) render(content string, opts Options) (string, error) {
	r, err := c.acquire(opts)
	if err != nil {
		return "", err
	}
	defer c.release(opts, r)
	return r.Render(content)
}

// createRenderer creates a TermRenderer for opts. Style is a glamour style
// name or a path to a JSON style file.
func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	style := opts.Style
	if style == "" {
		style = StyleDark
	}

	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}

	return glamour.NewTermRenderer(rendererOpts...)
}

// ClearCache drops all idle renderers.
func ClearCache() {
	renderers.mu.Lock()
	renderers.idle = make(map[Options][]*glamour.TermRenderer)
	renderers.mu.Unlock()
}

// CacheSize returns the number of option sets with cached renderers.
func CacheSize() int {
	renderers.mu.Lock()
	defer renderers.mu.Unlock()
	return len(renderers.idle)
}
