package event

import "testing"

type testEvent struct {
	Value int
}

func TestEmitDeliversAfterSwap(t *testing.T) {
	bus := NewBus()
	var got []int
	Subscribe(bus, func(e testEvent) { got = append(got, e.Value) })

	Emit(bus, testEvent{Value: 1})
	Emit(bus, testEvent{Value: 2})

	// Same tick: nothing delivered yet.
	bus.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("delivered %v before buffer swap", got)
	}

	bus.SwapBuffers()
	bus.DispatchAll()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("delivered %v, want [1 2] in emit order", got)
	}
}

func TestSwapClearsDeliveredEvents(t *testing.T) {
	bus := NewBus()
	count := 0
	Subscribe(bus, func(testEvent) { count++ })

	Emit(bus, testEvent{Value: 1})
	bus.SwapBuffers()
	bus.DispatchAll()

	// Next tick with no new emissions dispatches nothing.
	bus.SwapBuffers()
	bus.DispatchAll()
	if count != 1 {
		t.Fatalf("handler called %d times, want 1", count)
	}
}

func TestEmitDuringDispatchLandsNextTick(t *testing.T) {
	bus := NewBus()
	var order []string
	Subscribe(bus, func(e testEvent) {
		order = append(order, "handled")
		if e.Value == 1 {
			Emit(bus, testEvent{Value: 2})
		}
	})

	Emit(bus, testEvent{Value: 1})
	bus.SwapBuffers()
	bus.DispatchAll()
	if len(order) != 1 {
		t.Fatalf("cascade delivered same tick: %v", order)
	}

	bus.SwapBuffers()
	bus.DispatchAll()
	if len(order) != 2 {
		t.Fatalf("cascade not delivered next tick: %v", order)
	}
}
