package nilsimsa

import "testing"

func TestKnownDigests(t *testing.T) {
	cases := map[string]string{
		"hello world test message": "0ae10e6ec68600948c2ab8514e1004746e8ac7d39556379e46ba6cdd6a4076b4",
		"abcdefgh":                 "14c8118000000000030800000004042004189020001308014088003280000078",
	}
	for input, want := range cases {
		if got := Sum(input).String(); got != want {
			t.Errorf("Sum(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestCompare(t *testing.T) {
	base := "hello world test message"
	cases := []struct {
		other string
		want  int
	}{
		{"hello world test message", 128},
		{"hello world test messages", 124},
		{"Hello World test message!", 103},
		{"goodbye cruel world", 17},
	}
	for _, c := range cases {
		if got := Compare(Sum(base), Sum(c.other)); got != c.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", base, c.other, got, c.want)
		}
	}
}

func TestCompareIsSymmetric(t *testing.T) {
	a, b := Sum("the quick brown fox"), Sum("the quick brown dog")
	if Compare(a, b) != Compare(b, a) {
		t.Errorf("Compare is not symmetric")
	}
}

func TestIncrementalWrites(t *testing.T) {
	h := New()
	h.Write([]byte("hello world "))
	h.WriteString("test message")
	if h.Sum() != Sum("hello world test message") {
		t.Errorf("incremental digest differs from one-shot digest")
	}
	h.Reset()
	if h.Sum() != (Digest{}) {
		t.Errorf("reset hasher should produce the empty digest")
	}
}

func TestParseHex(t *testing.T) {
	d := Sum("abcdefgh")
	parsed, err := ParseHex(d.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed != d {
		t.Errorf("ParseHex(String()) did not round trip")
	}
	if _, err := ParseHex("abcd"); err == nil {
		t.Errorf("expected error for short digest")
	}
	if _, err := ParseHex("zz"); err == nil {
		t.Errorf("expected error for invalid hex")
	}
}
