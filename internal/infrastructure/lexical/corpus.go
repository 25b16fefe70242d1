package lexical

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mkravets/docsqa/internal/core/domain"
)

// snapshotRecord mirrors one line of the indexer's bm25_corpus.jsonl: a
// self-contained object with the chunk text and its provenance metadata.
type snapshotRecord struct {
	Text     string `json:"text"`
	Metadata struct {
		URL        string `json:"url"`
		Title      string `json:"title"`
		SourcePath string `json:"source_path"`
		ChunkID    int    `json:"chunk_id"`
	} `json:"metadata"`
}

// Scanner line cap. Chunks are a few hundred words, so 1 MiB leaves plenty
// of headroom for pathological markdown.
const maxSnapshotLineBytes = 1 << 20

// LoadCorpus reads the JSONL corpus snapshot produced by the indexer. Any
// failure here is an ErrIndexUnavailable: without the snapshot there is no
// lexical search and the process must not serve queries.
func LoadCorpus(path string) ([]domain.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndexUnavailable, "open corpus snapshot", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxSnapshotLineBytes)

	chunks := make([]domain.Chunk, 0, 1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var rec snapshotRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, domain.WrapError(domain.ErrIndexUnavailable, "parse corpus snapshot",
				fmt.Errorf("line %d: %w", line, err))
		}
		if strings.TrimSpace(rec.Text) == "" {
			return nil, domain.WrapError(domain.ErrIndexUnavailable, "parse corpus snapshot",
				fmt.Errorf("line %d: chunk with empty text", line))
		}

		url := rec.Metadata.URL
		if url == "" {
			url = rec.Metadata.SourcePath
		}
		chunks = append(chunks, domain.Chunk{
			Text:       rec.Text,
			URL:        url,
			Title:      rec.Metadata.Title,
			SourcePath: rec.Metadata.SourcePath,
			ChunkID:    rec.Metadata.ChunkID,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrIndexUnavailable, "read corpus snapshot", err)
	}
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrIndexUnavailable, "read corpus snapshot", errors.New("snapshot contains no chunks"))
	}
	return chunks, nil
}
