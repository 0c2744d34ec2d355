package service

// Viewport is the size of the browser area hosting a map instance.
type Viewport struct {
	Width  int `json:"width" doc:"Viewport width in CSS pixels"`
	Height int `json:"height" doc:"Viewport height in CSS pixels"`
}

// Narrow reports whether the viewport is below breakpoint. An unknown width
// counts as wide.
func (v Viewport) Narrow(breakpoint int) bool {
	return v.Width > 0 && v.Width < breakpoint
}
