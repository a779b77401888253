// Package upload accepts user-selected image files before they are sent for
// detection. It performs no network activity.
package upload

import (
	"strings"
	"sync"
)

// File is a user-selected file with its declared media type
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// Accepts reports whether a declared media type is an image
func Accepts(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}

// Capture is the acceptance path shared by file pickers and drag-and-drop.
// Accepted files are handed to onSelect synchronously, exactly once, while
// the preview is decoded in the background.
type Capture struct {
	onSelect func(*File)

	mutex      sync.Mutex
	preview    *Preview
	generation uint64
	pending    sync.WaitGroup
}

// NewCapture creates a capture that reports accepted files to onSelect
func NewCapture(onSelect func(*File)) *Capture {
	return &Capture{onSelect: onSelect}
}

// Submit accepts f if it declares an image media type. Anything else is
// ignored without error and leaves the preview untouched.
func (c *Capture) Submit(f *File) {
	if f == nil || !Accepts(f.MediaType) {
		return
	}

	c.mutex.Lock()
	c.generation++
	generation := c.generation
	c.mutex.Unlock()

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		preview := buildPreview(f)

		c.mutex.Lock()
		defer c.mutex.Unlock()
		// A newer submission or a Clear supersedes this decode
		if c.generation == generation {
			c.preview = &preview
		}
	}()

	if c.onSelect != nil {
		c.onSelect(f)
	}
}

// Drop handles a drag-and-drop of one or more files; only the first is used
func (c *Capture) Drop(files []*File) {
	if len(files) == 0 {
		return
	}
	c.Submit(files[0])
}

// Clear resets the local preview. It has no effect on requests already sent.
func (c *Capture) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.generation++
	c.preview = nil
}

// Preview returns the current preview, if any
func (c *Capture) Preview() (Preview, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.preview == nil {
		return Preview{}, false
	}
	return *c.preview, true
}

// Wait blocks until all background preview decodes have finished
func (c *Capture) Wait() {
	c.pending.Wait()
}
