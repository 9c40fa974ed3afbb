package gui

import (
	"context"
	"image"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/envelope/internal/geometry"
	"github.com/kikiluvv/envelope/internal/media"
	"github.com/kikiluvv/envelope/internal/observe"
	"github.com/kikiluvv/envelope/internal/playback"
	"github.com/kikiluvv/envelope/internal/viewstate"
)

const (
	buttonMargin = 32
	panelPadding = 16
	panelRadius  = 8

	fadeDuration = 400 * time.Millisecond
)

var panelColor = color.NRGBA{R: 255, G: 255, B: 255, A: 242}

// Params wires a View to its collaborators
type Params struct {
	Logger      zerolog.Logger
	Assets      media.Set
	Target      geometry.NormalizedRect
	Letter      string
	Placeholder string
	Sizer       playback.Sizer
	Decoder     playback.Decoder
	// MaxHeight caps the decoded height of still images, 0 disables
	MaxHeight int
	// Dispatch queues work onto the UI thread, fyne.Do when nil. It must be
	// asynchronous: playback completion is dispatched from the playback
	// goroutine, and the resulting unmount waits for that goroutine to exit.
	Dispatch observe.Dispatcher
}

// View is the single interactive screen. The state controller decides
// which media is mounted; the mounted media and the window report sizes
// that drive the geometry engine.
type View struct {
	logger    zerolog.Logger
	assets    media.Set
	target    geometry.NormalizedRect
	sizer     playback.Sizer
	decoder   playback.Decoder
	maxHeight int
	dispatch  observe.Dispatcher

	ctrl      *viewstate.Controller
	container *observe.Value[geometry.Size]
	natural   *observe.Value[geometry.Size]
	layout    geometry.Layout

	ctx    context.Context
	cancel context.CancelFunc
	subs   observe.Group
	mount  observe.Group
	// gen changes on every unmount so late callbacks from a previous
	// mount can be recognised and dropped
	gen int

	backdrop    *canvas.Rectangle
	media       *canvas.Image
	panel       *canvas.Rectangle
	fade        *fyne.Animation
	letter      *widget.Label
	letterView  *container.Scroll
	openButton  *widget.Button
	closeButton *widget.Button
	root        *fyne.Container
}

// NewView builds the widget tree. Nothing is mounted until Start.
func NewView(p Params) *View {
	v := &View{
		logger:    p.Logger.With().Str("component", "view").Logger(),
		assets:    p.Assets,
		target:    p.Target,
		sizer:     p.Sizer,
		decoder:   p.Decoder,
		maxHeight: p.MaxHeight,
		dispatch:  p.Dispatch,
		container: observe.NewValue(geometry.Size{}),
		natural:   observe.NewValue(geometry.Size{}),
	}
	if v.dispatch == nil {
		v.dispatch = fyne.Do
	}

	v.ctrl = viewstate.NewController(p.Logger, viewstate.Hooks{
		OnEnter: v.mountState,
		OnExit:  func(viewstate.State) { v.unmount() },
	})

	v.backdrop = canvas.NewRectangle(color.Black)

	v.media = canvas.NewImageFromImage(nil)
	v.media.FillMode = canvas.ImageFillStretch
	v.media.Hide()

	v.panel = canvas.NewRectangle(panelColor)
	v.panel.CornerRadius = panelRadius

	v.letter = widget.NewLabel(p.Letter)
	v.letter.Wrapping = fyne.TextWrapWord
	if p.Letter == "" {
		v.letter.SetText(p.Placeholder)
		v.letter.TextStyle = fyne.TextStyle{Italic: true}
	}
	v.letterView = container.NewVScroll(v.letter)

	v.openButton = widget.NewButton("Open", func() { v.ctrl.Dispatch(viewstate.OpenRequested) })
	v.openButton.Importance = widget.HighImportance
	v.closeButton = widget.NewButton("Close", func() { v.ctrl.Dispatch(viewstate.CloseRequested) })
	v.closeButton.Importance = widget.HighImportance

	v.root = container.New(&stageLayout{view: v},
		v.backdrop, v.media, v.panel, v.letterView, v.openButton, v.closeButton)

	return v
}

// Root returns the canvas object to place in a window
func (v *View) Root() fyne.CanvasObject {
	return v.root
}

// Start mounts the initial state and begins observing sizes
func (v *View) Start(ctx context.Context) {
	v.ctx, v.cancel = context.WithCancel(ctx)

	relayout := func(geometry.Size) { v.relayout() }
	v.subs.Add(v.container.Subscribe(relayout))
	v.subs.Add(v.natural.Subscribe(relayout))
	v.subs.Add(observe.OnClose(v.ctrl.Subscribe(v.render)))

	v.mountState(v.ctrl.State())
}

// Stop releases the mounted media and every observation
func (v *View) Stop() {
	v.stopFade()
	v.unmount()
	v.subs.Close()
	if v.cancel != nil {
		v.cancel()
	}
}

// State returns the active view state
func (v *View) State() viewstate.State {
	return v.ctrl.State()
}

// Layout returns the geometry from the most recent recomputation
func (v *View) Layout() geometry.Layout {
	return v.layout
}

func (v *View) mountState(s viewstate.State) {
	switch s {
	case viewstate.Closed:
		v.mountImage(v.assets.Closed)
	case viewstate.PlayingMedia:
		v.mountVideo(v.assets.Video)
	case viewstate.Open:
		v.mountImage(v.assets.Open)
	}
}

// unmount releases everything acquired for the current media and forgets
// its natural size.
func (v *View) unmount() {
	v.mount.Close()
	v.gen++
	v.media.Image = nil
	v.media.Refresh()
	v.natural.Set(geometry.Size{})
}

// scope returns a context and a size channel whose lifetime ends with the
// current mount.
func (v *View) scope() (context.Context, chan geometry.Size) {
	ctx, cancel := context.WithCancel(v.ctx)
	sizes := make(chan geometry.Size, 1)
	v.mount.Add(observe.OnClose(cancel))
	v.mount.Add(observe.Watch(ctx, sizes, v.dispatch, v.natural))
	return ctx, sizes
}

func (v *View) mountImage(asset media.Asset) {
	ctx, sizes := v.scope()
	gen := v.gen
	logger := v.logger.With().Str("image", asset.Path).Logger()

	go func() {
		size, err := v.sizer.NaturalSize(ctx, asset)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to measure image")
			return
		}
		img, err := media.LoadImage(asset.Path)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load image")
			return
		}
		img = media.Downscale(img, v.maxHeight)

		v.dispatch(func() { v.showFrame(gen, img) })
		select {
		case sizes <- size:
		case <-ctx.Done():
		}
	}()
}

func (v *View) mountVideo(asset media.Asset) {
	ctx, sizes := v.scope()
	gen := v.gen

	session := playback.Start(ctx, v.logger, v.sizer, v.decoder, asset, playback.Callbacks{
		Natural: func(s geometry.Size) {
			select {
			case sizes <- s:
			default:
			}
		},
		Frame: func(frame *image.RGBA) {
			v.dispatch(func() { v.showFrame(gen, frame) })
		},
		Done: func(err error) {
			v.dispatch(func() {
				if gen != v.gen {
					return
				}
				if err != nil {
					v.logger.Warn().Err(err).Msg("video failed, opening anyway")
					v.ctrl.Dispatch(viewstate.MediaFailed)
					return
				}
				v.ctrl.Dispatch(viewstate.MediaEnded)
			})
		},
	})
	v.mount.Add(observe.OnClose(session.Stop))
}

func (v *View) showFrame(gen int, img image.Image) {
	if gen != v.gen {
		return
	}
	v.media.Image = img
	v.media.Refresh()
}

// render toggles the chrome for state s
func (v *View) render(s viewstate.State) {
	setVisible(v.openButton, s == viewstate.Closed)
	setVisible(v.closeButton, s == viewstate.Open)
	if s == viewstate.Open {
		v.fadeIn()
	} else {
		v.stopFade()
	}
	v.relayout()
}

// fadeIn brings the letter panel up from transparent
func (v *View) fadeIn() {
	v.stopFade()
	v.panel.FillColor = color.Transparent
	v.fade = canvas.NewColorRGBAAnimation(color.Transparent, panelColor, fadeDuration, func(c color.Color) {
		v.panel.FillColor = c
		v.panel.Refresh()
	})
	v.fade.Start()
}

func (v *View) stopFade() {
	if v.fade == nil {
		return
	}
	v.fade.Stop()
	v.fade = nil
}

// relayout recomputes the whole geometry from the latest container and
// natural sizes and positions every object.
func (v *View) relayout() {
	size := v.container.Get()
	v.layout = geometry.Compute(size, v.natural.Get(), v.target)

	v.backdrop.Move(fyne.NewPos(0, 0))
	v.backdrop.Resize(fyne.NewSize(float32(size.Width), float32(size.Height)))

	d := v.layout.Displayed
	if d.IsZero() {
		v.media.Hide()
	} else {
		v.media.Move(fyne.NewPos(float32(d.X), float32(d.Y)))
		v.media.Resize(fyne.NewSize(float32(d.W), float32(d.H)))
		v.media.Show()
	}

	o := v.layout.Overlay
	showPanel := v.ctrl.State() == viewstate.Open && !o.IsZero()
	setVisible(v.panel, showPanel)
	setVisible(v.letterView, showPanel)
	if showPanel {
		v.panel.Move(fyne.NewPos(float32(o.Left), float32(o.Top)))
		v.panel.Resize(fyne.NewSize(float32(o.Width), float32(o.Height)))

		inset := float32(panelPadding)
		w := max(float32(o.Width)-2*inset, 0)
		h := max(float32(o.Height)-2*inset, 0)
		v.letterView.Move(fyne.NewPos(float32(o.Left)+inset, float32(o.Top)+inset))
		v.letterView.Resize(fyne.NewSize(w, h))
	}

	for _, b := range []*widget.Button{v.openButton, v.closeButton} {
		bs := b.MinSize()
		b.Resize(bs)
		b.Move(fyne.NewPos(
			(float32(size.Width)-bs.Width)/2,
			float32(size.Height)-bs.Height-buttonMargin,
		))
	}

	v.logger.Debug().
		Stringer("container", size).
		Stringer("natural", v.layout.Natural).
		Stringer("overlay", o).
		Msg("layout recomputed")
}

func setVisible(o fyne.CanvasObject, visible bool) {
	if visible {
		o.Show()
	} else {
		o.Hide()
	}
}

// stageLayout reports every container resize to the view
type stageLayout struct {
	view *View
}

func (l *stageLayout) Layout(_ []fyne.CanvasObject, size fyne.Size) {
	l.view.container.Set(geometry.Size{Width: float64(size.Width), Height: float64(size.Height)})
}

func (l *stageLayout) MinSize(_ []fyne.CanvasObject) fyne.Size {
	o, c := l.view.openButton.MinSize(), l.view.closeButton.MinSize()
	return fyne.NewSize(max(o.Width, c.Width), max(o.Height, c.Height)+buttonMargin)
}
