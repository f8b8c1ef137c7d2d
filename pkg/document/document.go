// Package document turns uploaded files into the source text sent to the
// oracle. Only plain text and markdown are read; anything else is refused.
package document

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/conceptmap/pkg/errors"
)

// Separator joins documents in [Collection.Combined].
const Separator = "\n\n---\n\n"

// supported lists readable extensions, lowercase.
var supported = []string{".md", ".txt"}

// SupportedExtensions returns the extensions Extract accepts.
func SupportedExtensions() []string {
	return slices.Clone(supported)
}

// Document is one uploaded file.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Content    string    `json:"-"`
	Chars      int       `json:"chars"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Extract reads an uploaded file. Invalid UTF-8 is dropped rather than
// rejected, since transcripts are often pasted from mixed sources.
func Extract(filename string, data []byte) (*Document, error) {
	filename = filepath.Base(filename)
	if err := errs.ValidateFilename(filename); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(supported, ext) {
		return nil, errs.New(errs.ErrCodeUnsupported, "unsupported file type %q (supported: %s)", ext, strings.Join(supported, ", "))
	}

	text := strings.ToValidUTF8(string(data), "")
	text = strings.TrimPrefix(text, "\uFEFF")
	return &Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		Content:    text,
		Chars:      len([]rune(text)),
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Collection holds documents in upload order. It is safe for concurrent use.
type Collection struct {
	mu   sync.RWMutex
	docs []*Document
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends documents.
func (c *Collection) Add(docs ...*Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, docs...)
}

// List returns the documents in upload order.
func (c *Collection) List() []Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Document, len(c.docs))
	for i, d := range c.docs {
		out[i] = *d
	}
	return out
}

// Len returns the number of documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Clear removes every document.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = nil
}

// Combined renders the collection as oracle context: one "[filename]"
// header per document, documents separated by [Separator].
func (c *Collection) Combined() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	parts := make([]string, len(c.docs))
	for i, d := range c.docs {
		parts[i] = "[" + d.Filename + "]\n" + d.Content
	}
	return strings.Join(parts, Separator)
}
