package pathutil

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"a.txt", "a.txt"},
		{"/a.txt", "/a.txt"},
		{"./a.txt", "a.txt"},
		{"a/../a.txt", "a.txt"},
		{"../a.txt", "../a.txt"},
		{"a/b/../../c", "c"},
		{"a/b/../../../c", "../c"},
		{"/a/../../b", "/b"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsSafe(t *testing.T) {
	t.Parallel()

	safe := []string{"a.txt", "a/b/c", "/a.txt", "a/../a.txt"}
	for _, p := range safe {
		if !IsSafe(p) {
			t.Errorf("IsSafe(%q) = false, want true", p)
		}
	}

	unsafe := []string{"../escape.txt", "a/../../escape.txt", ".."}
	for _, p := range unsafe {
		if IsSafe(p) {
			t.Errorf("IsSafe(%q) = true, want false", p)
		}
	}
}
