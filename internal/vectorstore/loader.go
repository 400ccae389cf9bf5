package vectorstore

import (
	"context"
	"fmt"

	"vecrag/internal/metadata"
)

// BuildFromList embeds all texts in one batch call and inserts each text
// under its own key with the metadata at the same index. Missing metadata
// entries default to empty; extra entries are ignored.
//
// Nothing is inserted unless the embedder returns one vector per text, and
// the whole batch is inserted under a single write lock.
func (m *MemoryStore) BuildFromList(ctx context.Context, texts []string, metas []metadata.Metadata) error {
	if len(texts) == 0 {
		return nil
	}
	if m.embedder == nil {
		return ErrNoEmbedder
	}

	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingCount, len(vectors), len(texts))
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, text := range texts {
		var md metadata.Metadata
		if i < len(metas) {
			md = metas[i]
		}
		m.insertLocked(text, vectors[i], md)
	}

	return nil
}
