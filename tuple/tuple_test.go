package tuple

import "testing"

func TestSprintScalarValues(t *testing.T) {
	got := Sprint(1, "two", 3.0)
	want := "(1, two, 3)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSprintPair(t *testing.T) {
	got := Sprint(Pair{First: 1, Second: "two"})
	want := "((1, two))"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSprintNestedSlice(t *testing.T) {
	got := Sprint("producer", []int{1, 2, 3})
	want := "(producer, (1, 2, 3))"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
