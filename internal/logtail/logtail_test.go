package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extman.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestTail_ReturnsLastLines(t *testing.T) {
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	path := writeLog(t, lines...)

	tests := []struct {
		name     string
		maxLines int
		want     []string
	}{
		{"zero", 0, nil},
		{"fewer than file", 3, []string{"line 8", "line 9", "line 10"}},
		{"exact", 10, lines},
		{"more than file", 50, lines},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tail(path, tt.maxLines, zerolog.TraceLevel)
			if err != nil {
				t.Fatalf("Tail returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Tail = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTail_FiltersByLevel(t *testing.T) {
	path := writeLog(t,
		`{"level":"debug","message":"request"}`,
		`{"level":"warn","message":"rolled back"}`,
		`not json`,
		`{"level":"info","message":"loaded"}`,
		`{"level":"error","message":"desync"}`,
	)

	got, err := Tail(path, 10, zerolog.WarnLevel)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	want := []string{
		`{"level":"warn","message":"rolled back"}`,
		`not json`,
		`{"level":"error","message":"desync"}`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tail = %v, want %v", got, want)
	}

	got, err = Tail(path, 1, zerolog.WarnLevel)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(got) != 1 || !strings.Contains(got[0], "desync") {
		t.Fatalf("Tail(1) = %v, want only the desync entry", got)
	}
}

func TestTail_MissingFile(t *testing.T) {
	got, err := Tail(filepath.Join(t.TempDir(), "missing.log"), 5, zerolog.InfoLevel)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("Tail = %v, want nil", got)
	}
}

func TestTail_SkipsBlankLines(t *testing.T) {
	path := writeLog(t, "a", "", "b")

	got, err := Tail(path, 5, zerolog.TraceLevel)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Tail = %v, want [a b]", got)
	}
}
