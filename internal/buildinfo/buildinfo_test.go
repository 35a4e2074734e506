package buildinfo

import "testing"

func TestShortAndBuilt(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	cases := []struct {
		version, commit, date string
		short, built          string
	}{
		{"dev", "unknown", "unknown", "dev", "dev"},
		{"dev", "abc123", "unknown", "abc123", "abc123"},
		{"v1.2.0", "abc123", "2026-10-18", "v1.2.0", "v1.2.0 2026-10-18"},
	}
	for _, tc := range cases {
		Version, Commit, Date = tc.version, tc.commit, tc.date
		if got := Short(); got != tc.short {
			t.Fatalf("Short() = %q; want %q", got, tc.short)
		}
		if got := Built(); got != tc.built {
			t.Fatalf("Built() = %q; want %q", got, tc.built)
		}
	}
}
