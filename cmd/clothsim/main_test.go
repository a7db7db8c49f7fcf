package main

import "testing"

func TestParseGrid(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		n       int
		wantErr bool
	}{
		{"structural=100:1000:4", "structural", 4, false},
		{"damping=1:1:1", "damping", 1, false},
		{"damping", "", 0, true},
		{"damping=1:2", "", 0, true},
		{"damping=a:2:3", "", 0, true},
		{"damping=1:2:x", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, values, err := parseGrid(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name != tt.name || len(values) != tt.n {
				t.Errorf("got %s with %d values", name, len(values))
			}
		})
	}
}
