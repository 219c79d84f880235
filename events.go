package spritelayer

// PointerEvent is the host-supplied raw pointer event, translated into
// domain events by the dispatcher below.
type PointerEvent struct {
	ClientX, ClientY float64
	Buttons          int
	Type             string
}

// ImageRef names an image within a sprite by its (subLayer, order)
// position.
type ImageRef struct {
	SubLayer, Order int
}

// Event is the payload delivered to listeners registered via Layer.On.
// SpriteID and Image come from the hit-test entry; the sprite store is not
// consulted. spriteleave events carry no SpriteID, HasImage is false and
// Image is the zero value.
type Event struct {
	Type        EventType
	SpriteID    string
	HasImage    bool
	Image       ImageRef
	ScreenPoint Vec2
	HostEvent   PointerEvent
}

// EventListener receives dispatched Events.
type EventListener func(Event)

// dispatcher translates raw pointer events into spriteclick/spritehover/
// spritemove/spriteleave events using the previous frame's hit-test
// entries, tracking the currently hovered entry so enter/leave transitions
// fire exactly once.
type dispatcher struct {
	hitTest      *hitTestIndex
	listeners    map[EventType][]EventListener
	hoveredKey   string
	hasHovered   bool
}

func newDispatcher(hitTest *hitTestIndex) *dispatcher {
	return &dispatcher{
		hitTest:   hitTest,
		listeners: make(map[EventType][]EventListener),
	}
}

func (d *dispatcher) on(event EventType, l EventListener) {
	d.listeners[event] = append(d.listeners[event], l)
}

// off removes every listener registered for event. Go funcs aren't
// comparable, so per-listener removal isn't possible; callers that need
// finer control should register one listener that internally dispatches
// to whatever sub-handlers it wants to keep live.
func (d *dispatcher) off(event EventType, l EventListener) {
	delete(d.listeners, event)
}

func (d *dispatcher) emit(e Event) {
	for _, l := range d.listeners[e.Type] {
		l(e)
	}
}

func entryKey(e hitTestEntry) string {
	return e.SpriteID + "\x00" + itoa(e.SubLayer) + "\x00" + itoa(e.Order)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// dispatch handles one raw pointer event, resolving it against the
// current hit-test index and firing spritemove/spritehover/spriteleave/
// spriteclick as appropriate.
func (d *dispatcher) dispatch(raw PointerEvent) {
	point := Vec2{X: raw.ClientX, Y: raw.ClientY}
	entry, hit := d.hitTest.resolveHitTestResult(point)

	switch raw.Type {
	case "move":
		d.handleMove(raw, point, entry, hit)
	case "down", "up":
		if hit {
			d.emit(Event{
				Type:        EventSpriteClick,
				SpriteID:    entry.SpriteID,
				HasImage:    true,
				Image:       ImageRef{SubLayer: entry.SubLayer, Order: entry.Order},
				ScreenPoint: point,
				HostEvent:   raw,
			})
		}
	}
}

func (d *dispatcher) handleMove(raw PointerEvent, point Vec2, entry hitTestEntry, hit bool) {
	if !hit {
		if d.hasHovered {
			d.hasHovered = false
			d.emit(Event{Type: EventSpriteLeave, ScreenPoint: point, HostEvent: raw})
		}
		return
	}

	key := entryKey(entry)
	if d.hasHovered && key != d.hoveredKey {
		d.emit(Event{Type: EventSpriteLeave, ScreenPoint: point, HostEvent: raw})
	}
	if !d.hasHovered || key != d.hoveredKey {
		d.hoveredKey = key
		d.hasHovered = true
		d.emit(Event{
			Type:        EventSpriteHover,
			SpriteID:    entry.SpriteID,
			HasImage:    true,
			Image:       ImageRef{SubLayer: entry.SubLayer, Order: entry.Order},
			ScreenPoint: point,
			HostEvent:   raw,
		})
	}
	d.emit(Event{
		Type:        EventSpriteMove,
		SpriteID:    entry.SpriteID,
		HasImage:    true,
		Image:       ImageRef{SubLayer: entry.SubLayer, Order: entry.Order},
		ScreenPoint: point,
		HostEvent:   raw,
	})
}
