package chunker

import "strings"

// Chunk is one line-bounded slice of a file, 1-based inclusive bounds.
type Chunk struct {
	StartLine int
	EndLine   int
	Text      string
}

// Split divides lines into chunks of at most maxLines with overlapLines of
// overlap between consecutive chunks.
func Split(content string, maxLines, overlapLines int) []Chunk {
	lines := splitLines(content)
	if len(lines) == 0 {
		return nil
	}
	if maxLines <= 0 {
		maxLines = len(lines)
	}
	if overlapLines < 0 {
		overlapLines = 0
	}
	if overlapLines >= maxLines {
		overlapLines = maxLines - 1
	}

	var chunks []Chunk
	start := 0
	for start < len(lines) {
		end := start + maxLines
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, Chunk{
			StartLine: start + 1,
			EndLine:   end,
			Text:      strings.Join(lines[start:end], "\n"),
		})
		if end == len(lines) {
			break
		}
		start = end - overlapLines
	}
	return chunks
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// AdaptiveSplit splits an oversized chunk at its midpoint with up to
// min(overlapLines, floor(len/4)) lines of overlap on both sides. Returns
// ok=false when the chunk has 15 or fewer lines (the floor below which the
// chunk is dropped instead, per spec.md §4.6).
func AdaptiveSplit(c Chunk, overlapLines int) (Chunk, Chunk, bool) {
	lines := splitLines(c.Text)
	n := len(lines)
	if n <= 15 {
		return Chunk{}, Chunk{}, false
	}

	overlap := overlapLines
	if quarter := n / 4; overlap > quarter {
		overlap = quarter
	}
	if overlap < 0 {
		overlap = 0
	}

	mid := n / 2
	firstEnd := mid + overlap
	if firstEnd > n {
		firstEnd = n
	}
	secondStart := mid - overlap
	if secondStart < 0 {
		secondStart = 0
	}

	first := Chunk{
		StartLine: c.StartLine,
		EndLine:   c.StartLine + firstEnd - 1,
		Text:      strings.Join(lines[0:firstEnd], "\n"),
	}
	second := Chunk{
		StartLine: c.StartLine + secondStart,
		EndLine:   c.EndLine,
		Text:      strings.Join(lines[secondStart:], "\n"),
	}
	return first, second, true
}
