package sanitizer

import (
	"strings"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Deep Tissue Massage  ", "Deep Tissue Massage"},
		{"multiple spaces", "Deep    Tissue", "Deep Tissue"},
		{"tabs and newlines", "Deep\t\nTissue", "Deep Tissue"},
		{"empty", "", ""},
		{"only whitespace", "  \t\n ", ""},
		{"control characters dropped", "Yoga\x00 Class", "Yoga Class"},
		{"unicode preserved", " Café & Spa™ ", "Café & Spa™"},
		{"hebrew", " תספורת יוסי ", "תספורת יוסי"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeMultiline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single line", "  hello   world ", "hello world"},
		{"keeps line breaks", "line one\r\nline  two", "line one\nline two"},
		{"collapses blank runs", "a\n\n\n\nb", "a\n\nb"},
		{"drops leading and trailing blanks", "\n\n a \n\n", "a"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeMultiline(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeMultiline(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeMultiline(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeRoles(t *testing.T) {
	got := NormalizeRoles([]string{" Provider", "Provider", "", "Admin "})
	if strings.Join(got, ",") != "Provider,Admin" {
		t.Errorf("got %v", got)
	}
	if got := NormalizeRoles(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestTrimAndNormalize_LongInput(t *testing.T) {
	input := strings.Repeat("word   ", 10000)
	got := TrimAndNormalize(input)
	if strings.Contains(got, "  ") {
		t.Error("double spaces survived normalization")
	}
}
