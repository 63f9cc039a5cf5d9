package mesh

import (
	"fmt"
	"sync"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
)

// Sink accepts the triangle soups a simulation emits: one soup per
// preview snapshot and one final soup. Each soup is an independent value;
// the sink may keep or discard it freely.
type Sink interface {
	Emit(tris []*sdf.Triangle3) error
}

// Collector keeps every emitted soup in memory, in emission order. The
// last entry is the final mesh once the simulation has finished.
type Collector struct {
	mu     sync.Mutex
	frames [][]*sdf.Triangle3
}

var _ Sink = (*Collector)(nil)

// Emit stores the soup.
func (c *Collector) Emit(tris []*sdf.Triangle3) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, tris)
	return nil
}

// Frames returns all emitted soups in order.
func (c *Collector) Frames() [][]*sdf.Triangle3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]*sdf.Triangle3(nil), c.frames...)
}

// Last returns the most recently emitted soup, or nil.
func (c *Collector) Last() []*sdf.Triangle3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

// Len returns the number of emissions so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

// STLFile rewrites one STL path on every emission, so the file always
// holds the latest snapshot while a previewing simulation runs and the
// final mesh once it finishes.
type STLFile struct {
	Path string
}

var _ Sink = (*STLFile)(nil)

// NewSTLFile returns a sink writing to path.
func NewSTLFile(path string) *STLFile {
	return &STLFile{Path: path}
}

// Emit writes the soup to the STL path, replacing previous contents.
func (s *STLFile) Emit(tris []*sdf.Triangle3) error {
	if err := render.SaveSTL(s.Path, tris); err != nil {
		return fmt.Errorf("mesh: writing %s: %w", s.Path, err)
	}
	return nil
}
