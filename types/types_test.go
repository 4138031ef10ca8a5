package types

import "testing"

func TestStateOf(t *testing.T) {
	if StateOf(true) != StateOn || StateOf(false) != StateOff {
		t.Fatal("StateOf mapping wrong")
	}
}

func TestSwitchStateFixedKeySet(t *testing.T) {
	s := NewSwitchState([]string{"s0", "s1"})
	if on, ok := s.Get("s0"); !ok || on {
		t.Fatalf("new state s0 = %v,%v", on, ok)
	}
	if s.Set("s9", true) {
		t.Fatal("Set accepted an unknown id")
	}
	if _, ok := s.Get("s9"); ok {
		t.Fatal("key set grew")
	}
	if !s.Set("s1", true) {
		t.Fatal("Set rejected a known id")
	}
	if on, _ := s.Get("s1"); !on {
		t.Fatal("Set did not stick")
	}
}

func TestSwitchStateEqual(t *testing.T) {
	a := NewSwitchState([]string{"s0", "s1"})
	b := NewSwitchState([]string{"s0", "s1"})
	if !a.Equal(b) {
		t.Fatal("fresh equal-key states not equal")
	}
	b.Set("s0", true)
	if a.Equal(b) {
		t.Fatal("differing values reported equal")
	}
	if a.Equal(NewSwitchState([]string{"s0"})) {
		t.Fatal("differing key sets reported equal")
	}
	if a.Equal(nil) {
		t.Fatal("nil reported equal")
	}
}

func TestSwitchStateCloneIsIndependent(t *testing.T) {
	a := NewSwitchState([]string{"s0"})
	c := a.Clone()
	a.Set("s0", true)
	if on, _ := c.Get("s0"); on {
		t.Fatal("clone changed with original")
	}
	if !a.Clone().Equal(a) {
		t.Fatal("clone not equal to original")
	}
}

func TestSwitchStateString(t *testing.T) {
	s := NewSwitchState([]string{"s0", "s1"})
	s.Set("s1", true)
	if got := s.String(); got != "{s0:0 s1:1}" {
		t.Fatalf("String() = %q", got)
	}
}
