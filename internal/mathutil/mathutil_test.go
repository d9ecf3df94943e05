package mathutil

import "testing"

func TestCeilDiv(t *testing.T) {
	cases := []struct{ x, y, want int64 }{
		{10, 5, 2},
		{11, 5, 3},
		{0, 5, 0},
		{5, 5, 1},
	}
	for _, c := range cases {
		if got := CeilDiv(c.x, c.y); got != c.want {
			t.Errorf("CeilDiv(%d, %d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}
}

func TestSafeAddOverflow(t *testing.T) {
	_, overflowed := SafeAdd(^uint64(0), 1)
	if !overflowed {
		t.Fatal("expected overflow")
	}
	sum, overflowed := SafeAdd(2, 3)
	if overflowed || sum != 5 {
		t.Fatalf("SafeAdd(2,3) = %d, %v", sum, overflowed)
	}
}
