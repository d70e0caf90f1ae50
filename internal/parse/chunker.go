package parse

import (
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	defaultChunkSize    = 1000 // characters
	defaultChunkOverlap = 100
)

// Chunker splits converted text into bounded-size pieces.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

// NewChunker creates a Chunker. Non-positive size or negative overlap fall
// back to defaults.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = defaultChunkOverlap
		if chunkOverlap >= chunkSize {
			chunkOverlap = chunkSize / 10
		}
	}
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// Split breaks text into chunks, preferring paragraph and sentence
// boundaries.
func (c *Chunker) Split(text string) ([]string, error) {
	return c.splitter.SplitText(text)
}
