package canonical

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestMarshalSortsKeys(t *testing.T) {
	got, err := Marshal(map[string]any{
		"z": 1,
		"a": map[string]any{"y": true, "b": "x"},
		"m": []any{"1", 2},
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"a":{"b":"x","y":true},"m":["1",2],"z":1}`
	if string(got) != want {
		t.Fatalf("canonical output mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestTransformIsOrderIndependent(t *testing.T) {
	permutations := [][]byte{
		[]byte(`{"id":"msg1","type":"REQUEST","payload":{"a":1,"b":2}}`),
		[]byte(`{"type":"REQUEST","payload":{"b":2,"a":1},"id":"msg1"}`),
		[]byte(`{"payload":{"b":2,"a":1},"id":"msg1","type":"REQUEST"}`),
	}
	first, err := Transform(permutations[0])
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	for i, p := range permutations[1:] {
		got, err := Transform(p)
		if err != nil {
			t.Fatalf("transform %d failed: %v", i+1, err)
		}
		if !bytes.Equal(first, got) {
			t.Fatalf("permutation %d differs: %s vs %s", i+1, first, got)
		}
	}
}

func TestMarshalNumbers(t *testing.T) {
	got, err := Marshal(map[string]any{"n": 10.0, "m": 0.5, "k": 1e21})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"k":1e+21,"m":0.5,"n":10}`
	if string(got) != want {
		t.Fatalf("number formatting mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestMarshalRejectsNonSerializable(t *testing.T) {
	cases := []any{
		func() {},
		make(chan int),
		math.NaN(),
	}
	for _, c := range cases {
		if _, err := Marshal(c); !errors.Is(err, ErrNotSerializable) {
			t.Fatalf("expected ErrNotSerializable for %T, got %v", c, err)
		}
	}
}

func TestTransformRejectsGarbage(t *testing.T) {
	if _, err := Transform([]byte(`{"unterminated`)); !errors.Is(err, ErrNotSerializable) {
		t.Fatalf("expected ErrNotSerializable, got %v", err)
	}
}
