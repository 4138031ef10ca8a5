package types

// ---- Channel demand states ----

// LogicalState is the binary commanded position of a servo channel.
// A channel is Unset only between construction and initialisation.
type LogicalState uint8

const (
	StateUnset LogicalState = iota
	StateOff
	StateOn
)

func (s LogicalState) String() string {
	switch s {
	case StateOff:
		return "off"
	case StateOn:
		return "on"
	default:
		return "unset"
	}
}

// StateOf converts a boolean switch value to a demand state.
func StateOf(on bool) LogicalState {
	if on {
		return StateOn
	}
	return StateOff
}

// DemandMap is the per-cycle channel-id -> demanded-state derivation.
type DemandMap map[string]LogicalState

// ---- Switch state snapshot ----

// SwitchState is an ordered mapping from switch id to boolean value.
// The key set is fixed at construction; only values mutate.
type SwitchState struct {
	ids  []string
	vals map[string]bool
}

// NewSwitchState creates a snapshot with the given fixed key set,
// every value initialised to false.
func NewSwitchState(ids []string) *SwitchState {
	s := &SwitchState{
		ids:  append([]string(nil), ids...),
		vals: make(map[string]bool, len(ids)),
	}
	for _, id := range s.ids {
		s.vals[id] = false
	}
	return s
}

// IDs returns the fixed key set in construction order.
func (s *SwitchState) IDs() []string { return append([]string(nil), s.ids...) }

// Get reports the value for id and whether id belongs to the key set.
func (s *SwitchState) Get(id string) (bool, bool) {
	v, ok := s.vals[id]
	return v, ok
}

// Set assigns a value to an existing key. Unknown ids are ignored and
// reported false; the key set never grows.
func (s *SwitchState) Set(id string, on bool) bool {
	if _, ok := s.vals[id]; !ok {
		return false
	}
	s.vals[id] = on
	return true
}

// Equal reports full value equality over the fixed key set.
func (s *SwitchState) Equal(o *SwitchState) bool {
	if o == nil || len(s.ids) != len(o.ids) {
		return false
	}
	for _, id := range s.ids {
		ov, ok := o.vals[id]
		if !ok || ov != s.vals[id] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the snapshot.
func (s *SwitchState) Clone() *SwitchState {
	c := &SwitchState{
		ids:  append([]string(nil), s.ids...),
		vals: make(map[string]bool, len(s.vals)),
	}
	for id, v := range s.vals {
		c.vals[id] = v
	}
	return c
}

func (s *SwitchState) String() string {
	out := "{"
	for i, id := range s.ids {
		if i > 0 {
			out += " "
		}
		out += id + ":"
		if s.vals[id] {
			out += "1"
		} else {
			out += "0"
		}
	}
	return out + "}"
}
