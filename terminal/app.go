package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/swarm/engine"
	"github.com/pthm-cable/swarm/input"
	"github.com/pthm-cable/swarm/vmath"
)

// mousePointer is the tracker pointer id used for the terminal mouse.
const mousePointer = 0

// Options configures an App.
type Options struct {
	FPS    int  // default 30
	Trails bool // plot trails

	// Scene respawns the initial particles; called at start and on reset.
	Scene func(*engine.Engine) error
}

// App runs an engine in a tcell screen.
type App struct {
	screen tcell.Screen
	eng    *engine.Engine
	opts   Options
	raster *Raster

	cols, rows int
	pressed    tcell.ButtonMask
	preset     string
	status     bool
}

// NewApp creates an app drawing eng on screen. The screen must already be
// initialised; the app enables mouse reporting on it.
func NewApp(screen tcell.Screen, eng *engine.Engine, opts Options) *App {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	screen.EnableMouse()
	a := &App{
		screen: screen,
		eng:    eng,
		opts:   opts,
		raster: NewRaster(0, 0),
		status: true,
	}
	a.resize()
	return a
}

// resize matches the raster to the screen. The bottom row is the status
// line when it is shown.
func (a *App) resize() {
	a.cols, a.rows = a.screen.Size()
	rows := a.drawRows()
	a.raster.Resize(a.cols, rows*2)
}

func (a *App) drawRows() int {
	if a.status && a.rows > 1 {
		return a.rows - 1
	}
	return a.rows
}

// canvasPos maps a cell to canvas coordinates.
func (a *App) canvasPos(col, row int) vmath.Vec {
	b := a.eng.Bounds()
	return CellToCanvas(col, row, a.cols, a.drawRows(), b.Width, b.Height)
}

// Start spawns the initial scene.
func (a *App) Start() error {
	if a.opts.Scene == nil {
		return nil
	}
	return a.opts.Scene(a.eng)
}

// HandleEvent applies one tcell event. It returns false when the app should quit.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventResize:
		a.resize()
		a.screen.Sync()
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	switch r := ev.Rune(); r {
	case 'q':
		return false
	case ' ':
		a.eng.TogglePause()
	case 't':
		a.opts.Trails = !a.opts.Trails
	case 's':
		a.status = !a.status
		a.resize()
	case 'r':
		a.eng.Reset()
		a.preset = ""
		if err := a.Start(); err != nil {
			slog.Error("scene respawn failed", "error", err)
		}
	case 'x':
		a.eng.RemoveAll()
		a.eng.Physics().ClearFields()
		a.eng.Tracker().Clear()
	case 'f':
		a.eng.Release()
	default:
		presets := engine.Presets()
		if i := int(r - '1'); i >= 0 && i < len(presets) {
			p := presets[i]
			a.eng.ApplyPreset(p, engine.DefaultPresetOptions(p))
			a.preset = p.String()
		}
	}
	return true
}

// handleMouse turns tcell button transitions into pointer events. Left
// attracts, right and middle repel; wheel events spin a vortex.
func (a *App) handleMouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	if row >= a.drawRows() {
		return
	}
	pos := a.canvasPos(col, row)
	tracker := a.eng.Tracker()

	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		tracker.OnScroll(-1, pos)
	case buttons&tcell.WheelDown != 0:
		tracker.OnScroll(1, pos)
	}

	held := buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	switch {
	case held != 0 && a.pressed == 0:
		tracker.OnPointerDown(mousePointer, pos, buttonOf(held))
	case held != 0:
		tracker.OnPointerMove(mousePointer, pos)
	case a.pressed != 0:
		tracker.OnPointerUp(mousePointer)
	default:
		tracker.OnPointerMove(mousePointer, pos)
	}
	a.pressed = held
}

// buttonOf maps tcell's button mask to a tracker button. tcell numbers the
// right button 2 and the middle button 3.
func buttonOf(m tcell.ButtonMask) input.Button {
	switch {
	case m&tcell.Button1 != 0:
		return input.ButtonPrimary
	case m&tcell.Button2 != 0:
		return input.ButtonSecondary
	default:
		return input.ButtonMiddle
	}
}

// Draw renders the current engine state and shows the screen.
func (a *App) Draw() {
	b := a.eng.Bounds()
	a.raster.Clear()
	a.raster.Draw(a.eng.Snapshot(), b.Width, b.Height, a.opts.Trails)

	for row := 0; row < a.drawRows(); row++ {
		for col := 0; col < a.cols; col++ {
			top := a.raster.At(col, row*2)
			bottom := a.raster.At(col, row*2+1)
			a.screen.SetContent(col, row, '▀', nil, cellStyle(top, bottom))
		}
	}
	if a.status && a.rows > 1 {
		a.drawStatus()
	}
	a.screen.Show()
}

func cellStyle(top, bottom colorful.Color) tcell.Style {
	return tcell.StyleDefault.
		Foreground(tcellColor(top)).
		Background(tcellColor(bottom))
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// StatusLine is the text of the bottom status row.
func (a *App) StatusLine() string {
	s := a.eng.Stats()
	state := "running"
	if s.Paused {
		state = "paused"
	}
	line := fmt.Sprintf(" %s | particles %d/%d | fields %d | interactions %d",
		state, s.Particles, s.MaxParticles, s.Physics.Fields, s.Input.Interactions)
	if a.preset != "" {
		line += " | " + a.preset
	}
	return line + " | 1-6 presets  space pause  r reset  f release  x clear  q quit"
}

func (a *App) drawStatus() {
	style := tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorBlack)
	row := a.rows - 1
	col := 0
	for _, r := range a.StatusLine() {
		if col >= a.cols {
			break
		}
		a.screen.SetContent(col, row, r, nil, style)
		col++
	}
	for ; col < a.cols; col++ {
		a.screen.SetContent(col, row, ' ', nil, style)
	}
}

// Run drives the engine at the configured frame rate until ctx is done or
// the user quits. Events are read on a separate goroutine.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}

	frame := time.Second / time.Duration(a.opts.FPS)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok || !a.HandleEvent(ev) {
				return nil
			}

		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			a.eng.Update(dt)

			start := time.Now()
			a.Draw()
			a.eng.RecordRender(time.Since(start))
		}
	}
}
