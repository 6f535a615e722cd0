package health

import (
	"context"
	"testing"
)

func TestCommandHandler_Register(t *testing.T) {
	h := NewCommandHandler()
	if h.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", h.Len())
	}

	h.Register("postgres", healthyCmd())
	h.Register("kafka", healthyCmd())
	h.Register("postgres", unhealthyCmd("replaced"))

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	regs := h.Commands()
	if regs[0].Name != "postgres" || regs[1].Name != "kafka" {
		t.Fatalf("order = %s,%s; want postgres,kafka", regs[0].Name, regs[1].Name)
	}
	if got := regs[0].Command.Execute(context.Background()); got.Status != StatusUnhealthy {
		t.Errorf("postgres command was not replaced")
	}
}

func TestCommandHandler_CommandsIsCopy(t *testing.T) {
	h := NewCommandHandler()
	h.Register("a", healthyCmd())

	regs := h.Commands()
	regs[0].Name = "mutated"

	names := h.Names()
	names[0] = "mutated"

	if h.Commands()[0].Name != "a" || h.Names()[0] != "a" {
		t.Error("handler state changed through returned slices")
	}
}
