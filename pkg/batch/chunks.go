package batch

// DefaultSize is the vendor server's maximum batch-compression capacity
const DefaultSize = 200

// Chunk is a bounded sub-range of file indices in the 0-based, end-exclusive
// indexing the wire protocol uses.
type Chunk struct {
	Start int
	End   int
}

// Len returns the number of files in the chunk
func (c Chunk) Len() int {
	return c.End - c.Start
}

// Selection returns the chunk's zero-based indices in order, ready to be
// joined into a compression request
func (c Chunk) Selection() []int {
	sel := make([]int, 0, c.Len())
	for i := c.Start; i < c.End; i++ {
		sel = append(sel, i)
	}
	return sel
}

// Sequencer lazily yields successive chunks covering [r.Start-1, r.End) in
// steps of at most size. A fresh Sequencer restarts from the beginning;
// there is no mid-sequence resume.
type Sequencer struct {
	next int
	end  int
	size int
}

// NewSequencer creates a Sequencer over the 0-based equivalent of r. A size
// of 0 or less falls back to DefaultSize.
func NewSequencer(r Range, size int) *Sequencer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Sequencer{
		next: r.Start - 1,
		end:  r.End,
		size: size,
	}
}

// Next returns the next chunk, or ok == false once the range is exhausted
func (s *Sequencer) Next() (Chunk, bool) {
	if s.next >= s.end {
		return Chunk{}, false
	}

	chunkEnd := s.next + s.size
	if chunkEnd > s.end {
		chunkEnd = s.end
	}

	chunk := Chunk{Start: s.next, End: chunkEnd}
	s.next = chunkEnd
	return chunk, true
}
