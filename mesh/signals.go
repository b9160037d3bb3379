package mesh

// Change notification. A Triangulation carries two distinct event
// channels: topology changes (cells added, removed or reconnected) and
// mesh movement (vertex coordinates changed in place). Listeners are
// invoked synchronously, in no particular order, on the goroutine that
// mutated the mesh.

type eventKind uint8

const (
	eventTopology eventKind = iota
	eventMovement
	nEventKinds
)

type signalSet struct {
	next int
	subs [nEventKinds]map[int]func()
}

func (s *signalSet) connect(kind eventKind, fn func()) int {
	if s.subs[kind] == nil {
		s.subs[kind] = make(map[int]func())
	}
	s.next++
	s.subs[kind][s.next] = fn
	return s.next
}

func (s *signalSet) fire(kind eventKind) {
	for _, fn := range s.subs[kind] {
		fn()
	}
}

// Connection is the handle returned by a signal subscription. Disconnect
// removes the listener; disconnecting twice is harmless.
type Connection struct {
	tria *Triangulation
	kind eventKind
	id   int
}

func (c Connection) Disconnect() {
	if c.tria == nil {
		return
	}
	delete(c.tria.listeners.subs[c.kind], c.id)
}

// OnTopologyChange registers fn to run whenever the triangulation's cell
// structure changes.
func (t *Triangulation) OnTopologyChange(fn func()) Connection {
	return Connection{tria: t, kind: eventTopology,
		id: t.listeners.connect(eventTopology, fn)}
}

// OnMeshMovement registers fn to run whenever vertices move.
func (t *Triangulation) OnMeshMovement(fn func()) Connection {
	return Connection{tria: t, kind: eventMovement,
		id: t.listeners.connect(eventMovement, fn)}
}
