package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name       string
		textLen    int
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{
			name:       "short text is a single chunk",
			textLen:    500,
			chunkSize:  1000,
			overlap:    100,
			wantChunks: 1,
		},
		{
			name:       "exact chunk size is a single chunk",
			textLen:    1000,
			chunkSize:  1000,
			overlap:    100,
			wantChunks: 1,
		},
		{
			name:       "2500 chars yields 3 windows",
			textLen:    2500,
			chunkSize:  1000,
			overlap:    100,
			wantChunks: 3,
		},
		{
			name:       "window boundary lands on text end",
			textLen:    1900,
			chunkSize:  1000,
			overlap:    100,
			wantChunks: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := makeText(tt.textLen)
			chunks := SplitText(text, tt.chunkSize, tt.overlap)

			if len(chunks) != tt.wantChunks {
				t.Fatalf("chunks = %d, want %d", len(chunks), tt.wantChunks)
			}

			// Reassembling without the overlaps must give back the input.
			var rebuilt strings.Builder
			for i, c := range chunks {
				if i == 0 {
					rebuilt.WriteString(c)
					continue
				}
				rebuilt.WriteString(c[tt.overlap:])
			}
			if rebuilt.String() != text {
				t.Errorf("chunks do not reassemble to the original text")
			}
		})
	}
}

func TestSplitTextOverlap(t *testing.T) {
	text := makeText(2500)
	chunks := SplitText(text, 1000, 100)

	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}

	// Consecutive windows share exactly the configured overlap.
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i][len(chunks[i])-100:]
		head := chunks[i+1][:100]
		if tail != head {
			t.Errorf("chunk %d tail != chunk %d head", i, i+1)
		}
	}

	// The second window starts 900 characters into the first.
	if chunks[1] != text[900:1900] {
		t.Errorf("chunk 1 does not start at offset 900")
	}
}

func TestSplitTextDeterminism(t *testing.T) {
	text := makeText(3456)

	first := SplitText(text, 1000, 100)
	for run := 0; run < 5; run++ {
		again := SplitText(text, 1000, 100)
		if len(again) != len(first) {
			t.Fatalf("run %d: chunk count changed", run)
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("run %d: chunk %d boundaries changed", run, i)
			}
		}
	}
}

func TestSplitTextOverlapLargerThanChunk(t *testing.T) {
	text := makeText(250)
	chunks := SplitText(text, 100, 100)

	// Falls back to non-overlapping stepping instead of looping forever.
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
}

func makeText(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz "
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[i%len(alphabet)])
	}
	return b.String()
}
