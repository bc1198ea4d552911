package webdex

import (
	"regexp"
	"strings"
)

// Chunk is a bounded-size span of normalized text plus its source metadata,
// the unit indexed for retrieval. Ordinals are dense, zero-based, and
// strictly increasing per source.
type Chunk struct {
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
	Name    string `json:"name"`
	URL     string `json:"url"`
}

// Chunking defaults, expressed in estimated tokens.
const (
	DefaultTargetTokens  = 800
	DefaultOverlapTokens = 120
)

// ChunkOptions configures text segmentation. The zero value selects the
// defaults, including the default overlap.
type ChunkOptions struct {
	// TargetTokens is the estimated-token budget per chunk.
	TargetTokens int

	// OverlapTokens is the estimated-token carry-over between consecutive
	// chunks.
	OverlapTokens int
}

func (o ChunkOptions) withDefaults() ChunkOptions {
	if o.TargetTokens <= 0 {
		o.TargetTokens = DefaultTargetTokens
	}
	if o.OverlapTokens <= 0 {
		o.OverlapTokens = DefaultOverlapTokens
	}
	return o
}

// EstimateTokens estimates the token count of s as ceil(len(s)/4).
// No real tokenizer is used; the estimate only has to be consistent.
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}

var headingLineRe = regexp.MustCompile(`^#{1,6} `)

// NormalizeText collapses interior whitespace per line, preserves
// markdown-style heading lines as their own paragraphs, joins contiguous
// non-blank lines into single-line paragraphs, and drops blank lines.
// The result has one paragraph per line. NormalizeText is idempotent.
func NormalizeText(text string) string {
	var paragraphs []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case headingLineRe.MatchString(trimmed):
			flush()
			paragraphs = append(paragraphs, trimmed)
		default:
			current = append(current, strings.Join(strings.Fields(trimmed), " "))
		}
	}
	flush()

	return strings.Join(paragraphs, "\n")
}

var sentenceEndRe = regexp.MustCompile(`([.!?])\s+`)

// splitSentences expands a single-line paragraph into sentences by splitting
// on sentence-ending punctuation followed by whitespace. Heading paragraphs
// are a single sentence.
func splitSentences(paragraph string) []string {
	if headingLineRe.MatchString(paragraph) {
		return []string{paragraph}
	}

	marked := sentenceEndRe.ReplaceAllString(paragraph, "$1\x00")
	parts := strings.Split(marked, "\x00")

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// SplitChunks segments text into overlapping, size-bounded chunk strings.
//
// Sentences are packed greedily up to the target budget; the first sentence
// of a chunk is always included even if it alone exceeds the target, which
// guarantees forward progress. Between chunks, trailing sentences are
// re-included by scanning backward from the chunk end until the overlap
// budget is met, but the next chunk always starts at least one sentence
// past the start of the current one, so segmentation terminates in at most
// one iteration per sentence.
func SplitChunks(text string, opts ChunkOptions) []string {
	opts = opts.withDefaults()

	var sentences []string
	for _, paragraph := range strings.Split(NormalizeText(text), "\n") {
		sentences = append(sentences, splitSentences(paragraph)...)
	}
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(sentences); {
		// Greedy packing: always take sentence i, then extend while the
		// running estimate stays within the target.
		j := i + 1
		sum := EstimateTokens(sentences[i])
		for j < len(sentences) && sum+EstimateTokens(sentences[j]) <= opts.TargetTokens {
			sum += EstimateTokens(sentences[j])
			j++
		}

		if chunk := strings.TrimSpace(strings.Join(sentences[i:j], " ")); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if j >= len(sentences) {
			break
		}

		// Overlap carry-over: re-include trailing sentences of the current
		// chunk until the overlap budget is met, never regressing to the
		// current start index.
		start := j
		carried := 0
		for start > i+1 && carried < opts.OverlapTokens {
			start--
			carried += EstimateTokens(sentences[start])
		}
		i = start
	}

	return chunks
}

// BuildChunks segments text and attaches source metadata with dense,
// zero-based ordinals.
func BuildChunks(name, url, text string, opts ChunkOptions) []Chunk {
	parts := SplitChunks(text, opts)
	chunks := make([]Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, Chunk{
			Ordinal: i,
			Text:    part,
			Name:    name,
			URL:     url,
		})
	}
	return chunks
}
