package pipeline

import (
	"testing"
	"time"

	"github.com/matzehuels/eclass/pkg/egraph"
	"github.com/matzehuels/eclass/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Input: "expr.json"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Extractor != DefaultExtractor {
		t.Errorf("Extractor should be %s, got %s", DefaultExtractor, opts.Extractor)
	}
	if opts.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL should be %v, got %v", DefaultCacheTTL, opts.CacheTTL)
	}
	if opts.Name != "expr.json" {
		t.Errorf("Name should default to Input, got %q", opts.Name)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidate(t *testing.T) {
	g, _ := egraph.NewBuilder().Build()

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing input", Options{}, errors.ErrCodeInvalidInput},
		{"bad extractor name", Options{Input: "a.json", Extractor: "Dijkstra!"}, errors.ErrCodeInvalidExtractor},
		{"bad format", Options{Input: "a.json", Formats: []string{"gif"}}, errors.ErrCodeInvalidInput},
		{"negative ttl", Options{Input: "a.json", CacheTTL: -time.Second}, errors.ErrCodeInvalidConfig},
		{"graph without input", Options{Graph: g}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.code == "" {
				if err != nil {
					t.Errorf("ValidateAndSetDefaults() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Input: "expr.json"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	logger := opts.Logger

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Logger != logger {
		t.Error("Logger changed on second call")
	}
}

func TestResultKeyOpts(t *testing.T) {
	opts := Options{Extractor: "dijkstra"}
	if got := opts.ResultKeyOpts().Extractor; got != "dijkstra" {
		t.Errorf("ResultKeyOpts().Extractor = %q", got)
	}
	if opts.WantsRender() {
		t.Error("no formats should mean no render")
	}
	opts.Formats = []string{FormatDOT}
	if !opts.WantsRender() {
		t.Error("formats should request render")
	}
}
