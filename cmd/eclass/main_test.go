package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/matzehuels/eclass/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"interrupted", fmt.Errorf("extract: %w", context.Canceled), 130},
		{"cycle", errors.New(errors.ErrCodeCycleDetected, "cycle through E"), 2},
		{"bad input", errors.New(errors.ErrCodeMalformedGraph, "bad json"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
