package module

import "testing"

type runner interface{ Run() string }

type runPort struct{}

func (runPort) Run() string { return "ran" }

func TestRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("imports", runPort{})
	if r, ok := PortsAs[runner]("imports"); !ok || r.Run() != "ran" {
		t.Fatalf("PortsAs failed")
	}
	if _, ok := PortsAs[runner]("missing"); ok {
		t.Fatalf("missing name should not resolve")
	}
	if _, ok := PortsAs[int]("imports"); ok {
		t.Fatalf("wrong type should not resolve")
	}

	Register("imports", 7)
	if n, ok := PortsAs[int]("imports"); !ok || n != 7 {
		t.Fatalf("re-register should replace, got %v %v", n, ok)
	}
}
