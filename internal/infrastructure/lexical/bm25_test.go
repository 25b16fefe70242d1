package lexical

import (
	"math"
	"testing"

	"github.com/mkravets/docsqa/internal/core/domain"
)

func testCorpus() []domain.Chunk {
	return []domain.Chunk{
		{Text: "refund policy for orders", URL: "https://docs.example.com/refunds"},
		{Text: "shipping times and carriers", URL: "https://docs.example.com/shipping"},
		{Text: "delete your account", URL: "https://docs.example.com/account"},
	}
}

func TestNewIndexRejectsEmptyCorpus(t *testing.T) {
	_, err := NewIndex(nil)
	if err == nil {
		t.Fatalf("expected error for empty corpus")
	}
	if !domain.IsKind(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestSearchMatchesHandComputedBM25(t *testing.T) {
	idx, err := NewIndex(testCorpus())
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}

	out := idx.Search([]string{"refund"}, 3)
	if len(out) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(out))
	}
	if out[0].URL != "https://docs.example.com/refunds" {
		t.Fatalf("expected refund chunk first, got %q", out[0].URL)
	}

	// N=3, n(refund)=1, f=1, |D|=4, avgdl=11/3, k1=1.5, b=0.75:
	// idf  = ln((3-1+0.5)/(1+0.5)+1) = ln(8/3)
	// score = idf * 1*(1.5+1) / (1 + 1.5*(0.25 + 0.75*4/(11/3)))
	want := math.Log(8.0/3.0) * 2.5 / (1 + 1.5*(0.25+0.75*4.0/(11.0/3.0)))
	if math.Abs(want-0.94228) > 1e-4 {
		t.Fatalf("hand-computed reference drifted: %v", want)
	}
	if math.Abs(out[0].Score-want) > 1e-9 {
		t.Fatalf("BM25 score = %v, want %v", out[0].Score, want)
	}
	if out[0].Source != domain.SourceLexical {
		t.Fatalf("expected lexical source tag, got %q", out[0].Source)
	}
}

func TestSearchIncludesZeroScoreDocumentsUpToLimit(t *testing.T) {
	idx, err := NewIndex(testCorpus())
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}

	out := idx.Search([]string{"refund"}, 3)
	if out[1].Score != 0 || out[2].Score != 0 {
		t.Fatalf("expected zero scores for non-matching docs, got %v and %v", out[1].Score, out[2].Score)
	}
	// Zero-score ties keep corpus insertion order.
	if out[1].URL != "https://docs.example.com/shipping" || out[2].URL != "https://docs.example.com/account" {
		t.Fatalf("tie-break violated insertion order: %q, %q", out[1].URL, out[2].URL)
	}
}

func TestSearchEmptyQueryScoresAllZero(t *testing.T) {
	idx, err := NewIndex(testCorpus())
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}

	out := idx.Search(nil, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(out))
	}
	for i, cand := range out {
		if cand.Score != 0 {
			t.Fatalf("candidate %d: expected zero score, got %v", i, cand.Score)
		}
	}
	if out[0].URL != "https://docs.example.com/refunds" {
		t.Fatalf("expected insertion order for all-zero scores, got %q first", out[0].URL)
	}
}

func TestSearchTermFrequencySaturation(t *testing.T) {
	idx, err := NewIndex([]domain.Chunk{
		{Text: "refund refund refund refund"},
		{Text: "refund policy here too"},
		{Text: "nothing relevant at all"},
	})
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}

	out := idx.Search([]string{"refund"}, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(out))
	}
	if out[0].Text != "refund refund refund refund" {
		t.Fatalf("expected higher-tf doc first, got %q", out[0].Text)
	}
	if out[0].Score <= out[1].Score {
		t.Fatalf("expected strictly higher score for higher tf: %v vs %v", out[0].Score, out[1].Score)
	}
	// k1 saturates term frequency: 4x the occurrences is far less than 4x the score.
	if out[0].Score >= 4*out[1].Score {
		t.Fatalf("tf saturation missing: %v vs %v", out[0].Score, out[1].Score)
	}
}

func TestSearchConcurrentReads(t *testing.T) {
	idx, err := NewIndex(testCorpus())
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 200; j++ {
				idx.Search([]string{"refund", "shipping"}, 3)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
