package cli

import (
	"slices"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "dot", []string{"dot"}},
		{"multiple formats", "svg,dot", []string{"svg", "dot"}},
		{"spaces and empties", " svg , ,dot", []string{"svg", "dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"from input", "", "graphs/math.json", "graphs/math"},
		{"strips format extension", "out/term.svg", "in.json", "out/term"},
		{"keeps other extension", "out/term.v2", "in.json", "out/term.v2"},
		{"no extension", "out/term", "in.json", "out/term"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		format string
		count  int
		want   string
	}{
		{"single format keeps output", "term.out", "svg", 1, "term.out"},
		{"single format without output", "", "dot", 1, "math.dot"},
		{"many formats share base", "term.svg", "dot", 2, "term.dot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.output, "math.json", tt.format, tt.count); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
