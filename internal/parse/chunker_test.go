package parse

import "testing"

func TestNewChunker(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		overlap     int
		wantSize    int
		wantOverlap int
	}{
		{"explicit values kept", 500, 50, 500, 50},
		{"non-positive size falls back", 0, 50, defaultChunkSize, 50},
		{"negative overlap falls back", 1000, -1, 1000, defaultChunkOverlap},
		{"overlap at size falls back", 1000, 1000, 1000, defaultChunkOverlap},
		{"small size caps fallback overlap", 50, 60, 50, 5},
		{"tiny size gets zero overlap", 5, -1, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChunker(tt.size, tt.overlap)
			if c.splitter.ChunkSize != tt.wantSize {
				t.Errorf("ChunkSize = %d, want %d", c.splitter.ChunkSize, tt.wantSize)
			}
			if c.splitter.ChunkOverlap != tt.wantOverlap {
				t.Errorf("ChunkOverlap = %d, want %d", c.splitter.ChunkOverlap, tt.wantOverlap)
			}
			if c.splitter.ChunkOverlap >= c.splitter.ChunkSize {
				t.Errorf("overlap %d not below size %d", c.splitter.ChunkOverlap, c.splitter.ChunkSize)
			}
		})
	}
}
