package modkit

import "testing"

func TestWithName(t *testing.T) {
	t.Parallel()
	var c buildCfg
	WithName("sweep")(&c)
	if c.name != "sweep" {
		t.Fatalf("expected name=sweep got=%q", c.name)
	}
}

type portsA struct{ N int }

func TestWithPorts_StoresConcreteValue(t *testing.T) {
	t.Parallel()
	var c buildCfg
	WithPorts(portsA{N: 7})(&c)
	got, ok := c.ports.(portsA)
	if !ok || got.N != 7 {
		t.Fatalf("ports not stored: %#v", c.ports)
	}
}
