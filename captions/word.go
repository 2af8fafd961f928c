package captions

import (
	"errors"
	"math"

	"github.com/samber/lo"
)

var (
	ErrNoWords          = errors.New("captions: no words")
	ErrInvalidBatchSize = errors.New("captions: words per batch must be at least 1")
)

// Word is one timed word of the voice-over, in seconds from audio start.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (w Word) Duration() float64 { return w.End - w.Start }

// Batch is a contiguous run of words shown together.
type Batch struct {
	Index  int
	Offset int // index of Words[0] in the full sequence
	Words  []Word
}

func (b Batch) First() Word { return b.Words[0] }
func (b Batch) Last() Word  { return b.Words[len(b.Words)-1] }

// Span is the time from the first word's start to the last word's end.
func (b Batch) Span() float64 { return b.Last().End - b.First().Start }

// Batches splits words into ceil(n/k) contiguous batches. Only the last
// batch may be short.
func Batches(words []Word, k int) ([]Batch, error) {
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	if k < 1 {
		return nil, ErrInvalidBatchSize
	}
	chunks := lo.Chunk(words, k)
	out := make([]Batch, len(chunks))
	for i, c := range chunks {
		out[i] = Batch{Index: i, Offset: i * k, Words: c}
	}
	return out, nil
}

// Gap is the non-negative pause between an end and the next start.
func Gap(end, nextStart float64) float64 {
	return math.Max(0, nextStart-end)
}

// BatchWaits returns the wait before each batch: the first word's start
// for batch 0, then the clamped gap since the previous batch ended.
func BatchWaits(batches []Batch) []float64 {
	waits := make([]float64, len(batches))
	for i, b := range batches {
		if i == 0 {
			waits[i] = math.Max(0, b.First().Start)
			continue
		}
		waits[i] = Gap(batches[i-1].Last().End, b.First().Start)
	}
	return waits
}

// WordGaps returns the wait before each word of a batch. The first is
// always zero.
func WordGaps(b Batch) []float64 {
	gaps := make([]float64, len(b.Words))
	for i := 1; i < len(b.Words); i++ {
		gaps[i] = Gap(b.Words[i-1].End, b.Words[i].Start)
	}
	return gaps
}
