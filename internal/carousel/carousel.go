// Package carousel keeps a client's "currently displayed image" consistent
// while the authoritative image list changes underneath it. It is a pure
// state machine: every transition is synchronous, total and side-effect
// free; asynchronous work (upload, delete, reorder) lives outside and only
// dispatches actions on settlement.
package carousel

import "github.com/poselog/internal/db"

// EmptyIndex is the sentinel for "nothing to display". Consumers must treat
// it as an empty state, not an error.
const EmptyIndex = -1

// State is the reducer's full value.
type State struct {
	Images         []db.AsanaImage
	CurrentIndex   int
	IsReordering   bool
	UploadProgress float64
}

// NewState returns the initial, empty state.
func NewState() State {
	return State{CurrentIndex: EmptyIndex}
}

// Action is the tagged union of carousel transitions.
type Action interface {
	isCarouselAction()
}

// ReplaceList swaps in a different record's images. The current index is
// reset regardless of whether it was still in range; positions of different
// records are unrelated.
type ReplaceList struct {
	Images []db.AsanaImage
}

// ImageAdded appends a freshly uploaded image. The new image is not
// auto-focused.
type ImageAdded struct {
	Image db.AsanaImage
}

// ImageRemoved drops an image by id, clamping the current index to the
// shrunken list.
type ImageRemoved struct {
	ImageID uint
}

// ListReordered replaces the list verbatim with the server's new order. The
// index is deliberately not adjusted; the same slot now shows whichever
// image occupies it.
type ListReordered struct {
	Images []db.AsanaImage
}

// ReorderStarted marks a reorder request as in flight.
type ReorderStarted struct{}

// ReorderSettled clears the in-flight reorder marker, success or not.
type ReorderSettled struct{}

// UploadStarted resets the upload progress for a new upload.
type UploadStarted struct{}

// UploadProgressed reports upload progress in [0, 1].
type UploadProgressed struct {
	Fraction float64
}

// UploadSettled clears the upload progress, success or not.
type UploadSettled struct{}

func (ReplaceList) isCarouselAction()      {}
func (ImageAdded) isCarouselAction()       {}
func (ImageRemoved) isCarouselAction()     {}
func (ListReordered) isCarouselAction()    {}
func (ReorderStarted) isCarouselAction()   {}
func (ReorderSettled) isCarouselAction()   {}
func (UploadStarted) isCarouselAction()    {}
func (UploadProgressed) isCarouselAction() {}
func (UploadSettled) isCarouselAction()    {}

// Reduce applies one action to the state. It is total: unknown actions
// return the state unchanged, no transition can fail.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ReplaceList:
		s.Images = a.Images
		if len(a.Images) == 0 {
			s.CurrentIndex = EmptyIndex
		} else {
			s.CurrentIndex = 0
		}
	case ImageAdded:
		s.Images = append(append([]db.AsanaImage{}, s.Images...), a.Image)
	case ImageRemoved:
		filtered := make([]db.AsanaImage, 0, len(s.Images))
		for _, img := range s.Images {
			if img.ID != a.ImageID {
				filtered = append(filtered, img)
			}
		}
		s.Images = filtered
		if s.CurrentIndex > len(filtered)-1 {
			s.CurrentIndex = len(filtered) - 1
		}
		if len(filtered) == 0 {
			s.CurrentIndex = EmptyIndex
		}
	case ListReordered:
		s.Images = a.Images
	case ReorderStarted:
		s.IsReordering = true
	case ReorderSettled:
		s.IsReordering = false
	case UploadStarted:
		s.UploadProgress = 0
	case UploadProgressed:
		fraction := a.Fraction
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		s.UploadProgress = fraction
	case UploadSettled:
		s.UploadProgress = 0
	}
	return s
}
