// Package panel implements the filter and settings panels driving a map.
// Panels hold no filter logic of their own: every control forwards to the
// filter.State they were built over.
package panel

import (
	"errors"

	"github.com/joeblew999/storemap/internal/service"
)

var (
	ErrAlreadyMounted  = errors.New("panel already mounted")
	ErrUnknownEnseigne = errors.New("unknown enseigne")
	ErrUnknownFilter   = errors.New("unknown cage filter")
	ErrUnknownControl  = errors.New("unknown control")
	ErrInvalidValue    = errors.New("invalid control value")
)

// layout is the collapse state shared by both panels. Panels collapse when
// the viewport becomes narrow and expand when it becomes wide again.
type layout struct {
	breakpoint int
	narrow     bool
	collapsed  bool
	release    func()
}

func (l *layout) mount(bus *service.EventBus, vp service.Viewport) error {
	if l.release != nil {
		return ErrAlreadyMounted
	}
	l.resize(vp.Width)
	l.release = bus.Subscribe(service.Resize, func(e service.Event) { l.resize(e.Width) })
	return nil
}

func (l *layout) unmount() {
	if l.release != nil {
		l.release()
		l.release = nil
	}
}

func (l *layout) resize(width int) {
	narrow := service.Viewport{Width: width}.Narrow(l.breakpoint)
	if narrow == l.narrow {
		return
	}
	l.narrow = narrow
	l.collapsed = narrow
}

// toggle flips the collapsed flag. Wide viewports always show the panel.
func (l *layout) toggle() {
	if l.narrow {
		l.collapsed = !l.collapsed
	}
}

func (l *layout) mounted() bool { return l.release != nil }
