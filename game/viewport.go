package game

import "sync"

// Viewport is the drawing surface the host provides: its current size and a
// way to hear about resizes.
type Viewport interface {
	Size() (width, height float64)
	OnResize(fn func(width, height float64)) (unsubscribe func())
}

// ResizableViewport is a Viewport whose size is pushed in by the host. Resize
// may be called from any goroutine; it only records dimensions and notifies
// subscribers, the next draw pass picks them up.
type ResizableViewport struct {
	mu     sync.RWMutex
	width  float64
	height float64
	subs   map[int]func(width, height float64)
	nextID int
}

// NewResizableViewport creates a viewport with an initial size.
func NewResizableViewport(width, height float64) *ResizableViewport {
	return &ResizableViewport{
		width:  width,
		height: height,
		subs:   make(map[int]func(width, height float64)),
	}
}

func (v *ResizableViewport) Size() (float64, float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

// Resize records a new size. Non-positive or non-finite sizes are ignored and
// Resize reports false.
func (v *ResizableViewport) Resize(width, height float64) bool {
	if width <= 0 || height <= 0 || !finite(width, height) {
		return false
	}

	v.mu.Lock()
	if v.width == width && v.height == height {
		v.mu.Unlock()
		return true
	}
	v.width, v.height = width, height
	subs := make([]func(float64, float64), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	v.mu.Unlock()

	for _, fn := range subs {
		fn(width, height)
	}
	return true
}

func (v *ResizableViewport) OnResize(fn func(width, height float64)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextID
	v.nextID++
	v.subs[id] = fn

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}
