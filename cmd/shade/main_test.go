package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	tests := []struct {
		name         string
		setup        func(t *testing.T, dir string)
		args         []string
		expectedExit int
	}{
		{
			name:         "Version",
			args:         []string{"shade", "version"},
			expectedExit: 0,
		},
		{
			name:         "Inspect without config uses defaults",
			args:         []string{"shade", "inspect"},
			expectedExit: 0,
		},
		{
			name:         "Warm without scenes",
			args:         []string{"shade", "warm"},
			expectedExit: 1,
		},
		{
			name: "Invalid config",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				err := os.WriteFile(dir+"/shade.yaml", []byte("workers: -1\n"), 0o600)
				if err != nil {
					t.Fatalf("failed to write config: %v", err)
				}
			},
			args:         []string{"shade", "clean"},
			expectedExit: 1,
		},
		{
			name:         "Unknown command",
			args:         []string{"shade", "bogus"},
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if tt.setup != nil {
				tt.setup(t, tmpDir)
			}
			t.Chdir(tmpDir)

			os.Args = tt.args
			assert.Equal(t, tt.expectedExit, run())
		})
	}
}
