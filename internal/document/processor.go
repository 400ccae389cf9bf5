package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"vecrag/internal/metadata"
)

// Default window sizes, in characters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ErrInvalidChunking is returned when the overlap does not leave room to advance.
var ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")

// Document represents a loaded document
type Document struct {
	Source   string            `json:"source"`
	Content  string            `json:"content"`
	Metadata metadata.Metadata `json:"metadata"`
}

// Chunk represents a chunk of a document
type Chunk struct {
	Text     string            `json:"text"`
	Metadata metadata.Metadata `json:"metadata"`
}

// LoadFromFile loads a document from a file
func LoadFromFile(filePath string) (*Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	if !utf8.Valid(content) {
		return nil, fmt.Errorf("file %s contains invalid UTF-8", filePath)
	}

	return &Document{
		Source:  filePath,
		Content: string(content),
		Metadata: metadata.Metadata{
			"source":   metadata.String(filePath),
			"filename": metadata.String(filepath.Base(filePath)),
			"type":     metadata.String(GetFileType(filePath)),
		},
	}, nil
}

// LoadFromString creates a document from a string
func LoadFromString(content, source string) *Document {
	return &Document{
		Source:   source,
		Content:  content,
		Metadata: metadata.Metadata{"source": metadata.String(source)},
	}
}

// Split cuts text into windows of size characters, each starting
// size-overlap characters after the previous one. The last window may be
// shorter. Sizes count runes, not bytes.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunking, size, overlap)
	}

	runes := []rune(text)
	step := size - overlap
	chunks := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}

// ChunkDocument splits a document into chunks that inherit its metadata plus
// their position.
func ChunkDocument(doc *Document, size, overlap int) ([]Chunk, error) {
	texts, err := Split(doc.Content, size, overlap)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		md := doc.Metadata.Clone()
		md["chunk_index"] = metadata.Int(i)
		chunks = append(chunks, Chunk{Text: text, Metadata: md})
	}
	return chunks, nil
}

// FindFiles returns the files under path whose extension is in extensions.
// A file path is returned as is when its extension matches.
func FindFiles(path string, recursive bool, extensions []string) ([]string, error) {
	var files []string

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if hasValidExtension(path, extensions) {
			files = append(files, path)
		}
		return files, nil
	}

	if recursive {
		err = filepath.WalkDir(path, func(filePath string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && hasValidExtension(filePath, extensions) {
				files = append(files, filePath)
			}
			return nil
		})
		return files, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			filePath := filepath.Join(path, entry.Name())
			if hasValidExtension(filePath, extensions) {
				files = append(files, filePath)
			}
		}
	}

	return files, nil
}

func hasValidExtension(filename string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, validExt := range extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// GetFileType determines the type of file based on extension
func GetFileType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return "markdown"
	case ".txt":
		return "text"
	case ".html", ".htm":
		return "html"
	case ".json":
		return "json"
	case ".csv":
		return "csv"
	default:
		return "text"
	}
}
