// Package input turns pointer, touch and wheel events into keyed interaction
// force sources. It is driven from a single goroutine: event handlers and the
// per-frame Advance must not run concurrently.
package input

import (
	"fmt"
	"time"

	"github.com/pthm-cable/swarm/forces"
	"github.com/pthm-cable/swarm/vmath"
)

// Kind is the behaviour of an interaction.
type Kind uint8

const (
	Attract Kind = iota
	Repel
	Vortex
	// Drag attracts weakly and reports every move as a DragEvent.
	Drag
)

var kindNames = [...]string{
	Attract: "attract",
	Repel:   "repel",
	Vortex:  "vortex",
	Drag:    "drag",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind maps an interaction name to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown interaction kind %q", s)
}

// ForceKind returns the force model the interaction is projected into.
func (k Kind) ForceKind() forces.Kind {
	switch k {
	case Repel:
		return forces.Repulsion
	case Vortex:
		return forces.Vortex
	default:
		return forces.Attraction
	}
}

// Button identifies the pointer button that started an interaction.
type Button uint8

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle
)

// Clock supplies the current time. Tests inject a fake.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// Config holds interaction defaults. Zero fields take the documented default.
type Config struct {
	AttractionRadius   float64 // default 100
	AttractionStrength float64 // default 0.5
	RepulsionRadius    float64 // default 80
	RepulsionStrength  float64 // default 0.8

	WheelDuration time.Duration // default 200ms
	WheelStrength float64       // default 2; sign follows the scroll direction

	PulseRadiusScale float64       // default 2; times AttractionRadius
	PulseStrength    float64       // default 2
	PulseDuration    time.Duration // default 500ms

	DragScale float64 // default 0.5; times attraction strength and radius
}

// DefaultConfig returns the default interaction configuration.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.AttractionRadius == 0 {
		c.AttractionRadius = 100
	}
	if c.AttractionStrength == 0 {
		c.AttractionStrength = 0.5
	}
	if c.RepulsionRadius == 0 {
		c.RepulsionRadius = 80
	}
	if c.RepulsionStrength == 0 {
		c.RepulsionStrength = 0.8
	}
	if c.WheelDuration == 0 {
		c.WheelDuration = 200 * time.Millisecond
	}
	if c.WheelStrength == 0 {
		c.WheelStrength = 2
	}
	if c.PulseRadiusScale == 0 {
		c.PulseRadiusScale = 2
	}
	if c.PulseStrength == 0 {
		c.PulseStrength = 2
	}
	if c.PulseDuration == 0 {
		c.PulseDuration = 500 * time.Millisecond
	}
	if c.DragScale == 0 {
		c.DragScale = 0.5
	}
	return c
}

// Interaction is one live, keyed force source.
type Interaction struct {
	ID       string
	Kind     Kind
	Pos      vmath.Vec
	Strength float64
	Radius   float64

	Start    time.Time
	Duration time.Duration // zero never expires
	Decays   bool          // strength fades linearly to zero over Duration
	base     float64
}

// Force projects the interaction into a force source.
func (in Interaction) Force() forces.Source {
	return forces.Source{Kind: in.Kind.ForceKind(), Pos: in.Pos, Strength: in.Strength, Radius: in.Radius}
}

// Options overrides the defaults of CreateInteraction.
type Options struct {
	Strength float64       // default attraction strength
	Radius   float64       // default attraction radius
	Duration time.Duration // zero keeps the interaction until removed
}

// DragEvent reports a drag interaction moving.
type DragEvent struct {
	ID  string
	Pos vmath.Vec
}

// Stats summarises the tracker.
type Stats struct {
	PointersDown int
	Touches      int
	Interactions int
	Pointer      vmath.Vec
}

// Tracker maps input events to keyed interactions. At most one interaction
// exists per key; adding with an existing key replaces it in place.
type Tracker struct {
	cfg   Config
	clock Clock

	interactions []Interaction
	pointers     map[int]Button
	touches      map[int]vmath.Vec
	pointer      vmath.Vec
	drags        []DragEvent
	seq          uint64
}

// NewTracker creates a tracker. A nil clock uses SystemClock.
func NewTracker(cfg Config, clock Clock) *Tracker {
	if clock == nil {
		clock = SystemClock
	}
	return &Tracker{
		cfg:      cfg.withDefaults(),
		clock:    clock,
		pointers: make(map[int]Button),
		touches:  make(map[int]vmath.Vec),
	}
}

// Config returns the active configuration.
func (t *Tracker) Config() Config {
	return t.cfg
}

// SetConfig replaces the configuration. Live interactions keep their values.
func (t *Tracker) SetConfig(cfg Config) {
	t.cfg = cfg.withDefaults()
}

// PointerKey is the interaction key used for a pointer id.
func PointerKey(id int) string {
	return fmt.Sprintf("pointer_%d", id)
}

// TouchKey is the interaction key used for a touch id.
func TouchKey(id int) string {
	return fmt.Sprintf("touch_%d", id)
}

// WheelKey is the key of the scroll vortex.
const WheelKey = "wheel"

// OnPointerDown starts an attract interaction for the primary button and a
// repel interaction for any other button.
func (t *Tracker) OnPointerDown(id int, pos vmath.Vec, button Button) {
	t.pointers[id] = button
	t.pointer = pos

	in := Interaction{ID: PointerKey(id), Pos: pos, Start: t.clock.Now()}
	if button == ButtonPrimary {
		in.Kind = Attract
		in.Strength = t.cfg.AttractionStrength
		in.Radius = t.cfg.AttractionRadius
	} else {
		in.Kind = Repel
		in.Strength = t.cfg.RepulsionStrength
		in.Radius = t.cfg.RepulsionRadius
	}
	t.Set(in)
}

// OnPointerMove moves the pointer's interaction if one exists.
func (t *Tracker) OnPointerMove(id int, pos vmath.Vec) {
	t.pointer = pos
	t.Move(PointerKey(id), pos)
}

// OnPointerUp ends the pointer's interaction.
func (t *Tracker) OnPointerUp(id int) {
	delete(t.pointers, id)
	t.Remove(PointerKey(id))
}

// OnPointerCancel ends the pointer's interaction.
func (t *Tracker) OnPointerCancel(id int) {
	t.OnPointerUp(id)
}

// OnTouchStart starts an attract interaction for the touch.
func (t *Tracker) OnTouchStart(id int, pos vmath.Vec) {
	t.touches[id] = pos
	t.Set(Interaction{
		ID:       TouchKey(id),
		Kind:     Attract,
		Pos:      pos,
		Strength: t.cfg.AttractionStrength,
		Radius:   t.cfg.AttractionRadius,
		Start:    t.clock.Now(),
	})
}

// OnTouchMove moves a known touch; unknown touches are ignored.
func (t *Tracker) OnTouchMove(id int, pos vmath.Vec) {
	if _, ok := t.touches[id]; !ok {
		return
	}
	t.touches[id] = pos
	t.Move(TouchKey(id), pos)
}

// OnTouchEnd ends the touch's interaction.
func (t *Tracker) OnTouchEnd(id int) {
	delete(t.touches, id)
	t.Remove(TouchKey(id))
}

// OnTouchCancel ends the touch's interaction.
func (t *Tracker) OnTouchCancel(id int) {
	t.OnTouchEnd(id)
}

// OnScroll creates a short-lived vortex at pos. Scrolling down (positive
// delta) spins one way, up the other. It expires on the first Advance after
// WheelDuration.
func (t *Tracker) OnScroll(delta float64, pos vmath.Vec) {
	strength := t.cfg.WheelStrength
	if delta > 0 {
		strength = -strength
	}
	t.pointer = pos
	t.Set(Interaction{
		ID:       WheelKey,
		Kind:     Vortex,
		Pos:      pos,
		Strength: strength,
		Radius:   t.cfg.AttractionRadius * 2,
		Start:    t.clock.Now(),
		Duration: t.cfg.WheelDuration,
	})
}

// Pulse creates an interaction whose strength fades linearly from strength
// to zero over duration. Zero strength or duration take the configured
// defaults. It returns the interaction key.
func (t *Tracker) Pulse(pos vmath.Vec, kind Kind, strength float64, duration time.Duration) string {
	if strength == 0 {
		strength = t.cfg.PulseStrength
	}
	if duration <= 0 {
		duration = t.cfg.PulseDuration
	}
	id := t.nextID("pulse")
	t.Set(Interaction{
		ID:       id,
		Kind:     kind,
		Pos:      pos,
		Strength: strength,
		Radius:   t.cfg.AttractionRadius * t.cfg.PulseRadiusScale,
		Start:    t.clock.Now(),
		Duration: duration,
		Decays:   true,
		base:     strength,
	})
	return id
}

// CreateInteraction adds a programmatic interaction and returns its key.
func (t *Tracker) CreateInteraction(pos vmath.Vec, kind Kind, opts Options) string {
	if opts.Strength == 0 {
		opts.Strength = t.cfg.AttractionStrength
	}
	if opts.Radius == 0 {
		opts.Radius = t.cfg.AttractionRadius
	}
	id := t.nextID("custom")
	t.Set(Interaction{
		ID:       id,
		Kind:     kind,
		Pos:      pos,
		Strength: opts.Strength,
		Radius:   opts.Radius,
		Start:    t.clock.Now(),
		Duration: opts.Duration,
	})
	return id
}

// CreateDrag adds a weak attract interaction that emits a DragEvent each
// time it is moved. It returns the interaction key.
func (t *Tracker) CreateDrag(pos vmath.Vec) string {
	id := t.nextID("drag")
	t.Set(Interaction{
		ID:       id,
		Kind:     Drag,
		Pos:      pos,
		Strength: t.cfg.AttractionStrength * t.cfg.DragScale,
		Radius:   t.cfg.AttractionRadius * t.cfg.DragScale,
		Start:    t.clock.Now(),
	})
	return id
}

func (t *Tracker) nextID(prefix string) string {
	t.seq++
	return fmt.Sprintf("%s_%d", prefix, t.seq)
}

// Set adds in, replacing any interaction with the same key.
func (t *Tracker) Set(in Interaction) {
	if in.Decays && in.base == 0 {
		in.base = in.Strength
	}
	if i := t.index(in.ID); i >= 0 {
		t.interactions[i] = in
		return
	}
	t.interactions = append(t.interactions, in)
}

// Move repositions an interaction. Drag interactions also queue a DragEvent.
// It reports whether the key exists.
func (t *Tracker) Move(id string, pos vmath.Vec) bool {
	i := t.index(id)
	if i < 0 {
		return false
	}
	t.interactions[i].Pos = pos
	if t.interactions[i].Kind == Drag {
		t.drags = append(t.drags, DragEvent{ID: id, Pos: pos})
	}
	return true
}

// Remove deletes the interaction for id. It reports whether it existed.
func (t *Tracker) Remove(id string) bool {
	i := t.index(id)
	if i < 0 {
		return false
	}
	t.interactions = append(t.interactions[:i], t.interactions[i+1:]...)
	return true
}

// Get returns the interaction for id.
func (t *Tracker) Get(id string) (Interaction, bool) {
	if i := t.index(id); i >= 0 {
		return t.interactions[i], true
	}
	return Interaction{}, false
}

func (t *Tracker) index(id string) int {
	for i := range t.interactions {
		if t.interactions[i].ID == id {
			return i
		}
	}
	return -1
}

// Advance re-evaluates timed interactions at now: decaying pulses get
// strength S*(1-elapsed/D) and anything whose duration has elapsed is removed.
// Call once per frame before reading Forces.
func (t *Tracker) Advance(now time.Time) {
	kept := t.interactions[:0]
	for _, in := range t.interactions {
		if in.Duration > 0 {
			elapsed := now.Sub(in.Start)
			if elapsed >= in.Duration {
				continue
			}
			if in.Decays {
				progress := float64(elapsed) / float64(in.Duration)
				if progress < 0 {
					progress = 0
				}
				in.Strength = in.base * (1 - progress)
			}
		}
		kept = append(kept, in)
	}
	// Drop references past the new length.
	for i := len(kept); i < len(t.interactions); i++ {
		t.interactions[i] = Interaction{}
	}
	t.interactions = kept
}

// Forces returns the live interactions as force sources. The slice is a copy.
func (t *Tracker) Forces() []forces.Source {
	out := make([]forces.Source, len(t.interactions))
	for i := range t.interactions {
		out[i] = t.interactions[i].Force()
	}
	return out
}

// Interactions returns a copy of the live interactions.
func (t *Tracker) Interactions() []Interaction {
	out := make([]Interaction, len(t.interactions))
	copy(out, t.interactions)
	return out
}

// DrainDragEvents returns queued drag moves and clears the queue.
func (t *Tracker) DrainDragEvents() []DragEvent {
	out := t.drags
	t.drags = nil
	return out
}

// Clear drops every interaction and pointer/touch state.
func (t *Tracker) Clear() {
	t.interactions = t.interactions[:0]
	clear(t.pointers)
	clear(t.touches)
	t.drags = nil
}

// IsInteracting reports whether any pointer is down or any touch is active.
func (t *Tracker) IsInteracting() bool {
	return len(t.pointers) > 0 || len(t.touches) > 0
}

// Stats returns a summary of the tracker state.
func (t *Tracker) Stats() Stats {
	return Stats{
		PointersDown: len(t.pointers),
		Touches:      len(t.touches),
		Interactions: len(t.interactions),
		Pointer:      t.pointer,
	}
}
