package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 2 || names[0] != "Dark" || names[1] != "Light" {
		t.Fatalf("ThemeNames() = %v, want [Dark Light]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Dark"); got != "Light" {
		t.Fatalf("NextTheme(Dark) = %q, want Light", got)
	}
	if got := NextTheme("Light"); got != "Dark" {
		t.Fatalf("NextTheme(Light) = %q, want Dark", got)
	}
	if got := NextTheme("Unknown"); got != "Dark" {
		t.Fatalf("NextTheme(Unknown) = %q, want Dark", got)
	}
}

func TestGetTheme_FallsBackToDark(t *testing.T) {
	if got := GetTheme("Dracula").Name; got != "Dark" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Dark", got)
	}
	if got := GetTheme("Light").Name; got != "Light" {
		t.Fatalf("GetTheme(Light).Name = %q, want Light", got)
	}
}

func TestTruncate(t *testing.T) {
	cases := map[string]struct {
		in    string
		limit int
		want  string
	}{
		"short":     {"DevLens", 10, "DevLens"},
		"ellipsis":  {"SpeedBoost Pro", 8, "Speed..."},
		"tiny":      {"abcdef", 2, "ab"},
		"no limit":  {"  padded  ", 0, "padded"},
		"multibyte": {"ÄÖÜäöü", 5, "ÄÖ..."},
	}
	for name, tc := range cases {
		if got := truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("%s: truncate(%q, %d) = %q, want %q", name, tc.in, tc.limit, got, tc.want)
		}
	}
}
