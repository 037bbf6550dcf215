package events

import (
	"reflect"
	"testing"
)

func TestHubDeliversInOrder(t *testing.T) {
	var h Hub[int]
	var got []string

	h.Subscribe(func(v int) { got = append(got, "a") })
	h.Subscribe(func(v int) { got = append(got, "b") })

	h.Publish(1)
	h.Publish(2)

	want := []string{"a", "b", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("delivery order = %v, want %v", got, want)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	var h Hub[string]
	var seen []string

	unsub := h.Subscribe(func(v string) { seen = append(seen, v) })
	h.Publish("first")
	unsub()
	unsub()
	h.Publish("second")

	if !reflect.DeepEqual(seen, []string{"first"}) {
		t.Errorf("seen = %v, want [first]", seen)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestHubUnsubscribeInsideCallback(t *testing.T) {
	var h Hub[int]
	calls := 0

	var unsub func()
	unsub = h.Subscribe(func(int) {
		calls++
		unsub()
	})

	h.Publish(1)
	h.Publish(2)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
