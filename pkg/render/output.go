package render

import "github.com/yafaray-go/renderer/pkg/core"

// OutputCallbacks is the output sink surface the driver notifies.
// Every callback receives the
// opaque User value set at registration. Nil callbacks are simply
// skipped, so partial sinks are fine. The driver serializes all calls
// behind one mutex and invokes them at render start (view and layer), at
// tile start when tile highlighting is on, at tile completion and at
// flush. HighlightPixel is never called by the driver.
type OutputCallbacks struct {
	User interface{}

	NotifyView  func(user interface{}, view string)
	NotifyLayer func(user interface{}, layer string)

	PutPixel  func(user interface{}, view string, x, y int, layer string, colour core.Vec3, alpha float64)
	FlushArea func(user interface{}, view string, x0, y0, x1, y1 int)
	Flush     func(user interface{}, view string)

	HighlightArea  func(user interface{}, view string, x0, y0, x1, y1 int)
	HighlightPixel func(user interface{}, view string, x, y int)
}

func (o *OutputCallbacks) notifyView(view string) {
	if o != nil && o.NotifyView != nil {
		o.NotifyView(o.User, view)
	}
}

func (o *OutputCallbacks) notifyLayer(layer string) {
	if o != nil && o.NotifyLayer != nil {
		o.NotifyLayer(o.User, layer)
	}
}

func (o *OutputCallbacks) putPixel(view string, x, y int, layer string, colour core.Vec3, alpha float64) {
	if o != nil && o.PutPixel != nil {
		o.PutPixel(o.User, view, x, y, layer, colour, alpha)
	}
}

func (o *OutputCallbacks) flushArea(view string, x0, y0, x1, y1 int) {
	if o != nil && o.FlushArea != nil {
		o.FlushArea(o.User, view, x0, y0, x1, y1)
	}
}

func (o *OutputCallbacks) flush(view string) {
	if o != nil && o.Flush != nil {
		o.Flush(o.User, view)
	}
}

func (o *OutputCallbacks) highlightArea(view string, x0, y0, x1, y1 int) {
	if o != nil && o.HighlightArea != nil {
		o.HighlightArea(o.User, view, x0, y0, x1, y1)
	}
}
