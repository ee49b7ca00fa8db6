package symbol

import (
	"testing"

	"go.viam.com/test"
)

func TestSymbolRoundTrip(t *testing.T) {
	for _, kind := range []byte{'x', 'l', 'a'} {
		for _, index := range []uint64{0, 1, 7, 1024, maxIndex} {
			s := New(kind, index)
			test.That(t, s.Kind(), test.ShouldEqual, kind)
			test.That(t, s.Index(), test.ShouldEqual, index)
			test.That(t, s, test.ShouldEqual, New(kind, index))
		}
	}
}

func TestSymbolString(t *testing.T) {
	test.That(t, New('x', 0).String(), test.ShouldEqual, "x0")
	test.That(t, New('l', 42).String(), test.ShouldEqual, "l42")

	seen := map[string]bool{}
	for _, kind := range []byte{'x', 'l'} {
		for index := uint64(0); index < 50; index++ {
			str := New(kind, index).String()
			test.That(t, seen[str], test.ShouldBeFalse)
			seen[str] = true
		}
	}
}

func TestSymbolOrdering(t *testing.T) {
	for _, tc := range []struct {
		name string
		a, b Symbol
		less bool
	}{
		{"same kind ascending index", New('x', 1), New('x', 2), true},
		{"same kind descending index", New('x', 3), New('x', 2), false},
		{"kind dominates index", New('l', 100), New('x', 0), true},
		{"equal symbols", New('x', 5), New('x', 5), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, tc.a.Less(tc.b), test.ShouldEqual, tc.less)
			// packed key order must agree with Less
			test.That(t, tc.a.Key() < tc.b.Key(), test.ShouldEqual, tc.less)
		})
	}
}

func TestSymbolInvalid(t *testing.T) {
	inv := Invalid()
	test.That(t, inv.IsValid(), test.ShouldBeFalse)
	test.That(t, Symbol{}.IsValid(), test.ShouldBeFalse)
	test.That(t, New('x', 0).IsValid(), test.ShouldBeTrue)
	test.That(t, inv, test.ShouldEqual, Invalid())
}

func TestSort(t *testing.T) {
	syms := []Symbol{New('x', 2), New('l', 1), New('x', 0), New('l', 0)}
	Sort(syms)
	test.That(t, syms, test.ShouldResemble, []Symbol{
		New('l', 0), New('l', 1), New('x', 0), New('x', 2),
	})
}
