// Package store keeps the finished chunk sets of processed documents in
// memory for retrieval through the API.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/tmalloy/docchunk/internal/doctree"
)

// Document is a processed document with its chunk set.
type Document struct {
	DocumentID   string    `json:"document_id"`
	Filename     string    `json:"filename"`
	SourceFormat string    `json:"source_format"`
	ContentHash  string    `json:"content_hash"`
	ChunkCount   int       `json:"chunk_count"`
	CreatedAt    time.Time `json:"created_at"`

	chunks []doctree.Chunk
}

// Chunks returns a copy of the document's chunk sequence.
func (d *Document) Chunks() []doctree.Chunk {
	out := make([]doctree.Chunk, len(d.chunks))
	copy(out, d.chunks)
	return out
}

// Store is a thread-safe in-memory document registry.
type Store struct {
	mu   sync.Mutex
	docs map[string]*Document

	// byHash indexes documents by content hash for dedup lookups.
	byHash map[string]string
}

func New() *Store {
	return &Store{
		docs:   make(map[string]*Document),
		byHash: make(map[string]string),
	}
}

// Put stores or replaces a document's chunk set.
func (s *Store) Put(documentID, filename, sourceFormat, contentHash string, chunks []doctree.Chunk) {
	copied := make([]doctree.Chunk, len(chunks))
	copy(copied, chunks)

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.docs[documentID]; ok {
		delete(s.byHash, old.ContentHash)
	}
	s.docs[documentID] = &Document{
		DocumentID:   documentID,
		Filename:     filename,
		SourceFormat: sourceFormat,
		ContentHash:  contentHash,
		ChunkCount:   len(copied),
		CreatedAt:    time.Now(),
		chunks:       copied,
	}
	s.byHash[contentHash] = documentID
}

// Get returns a document by ID, or nil.
func (s *Store) Get(documentID string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[documentID]
}

// FindByHash returns the ID of a document with the given content hash.
func (s *Store) FindByHash(contentHash string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byHash[contentHash]
	return id, ok
}

// Delete removes a document. Returns false if it was not present.
func (s *Store) Delete(documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[documentID]
	if !ok {
		return false
	}
	delete(s.byHash, doc.ContentHash)
	delete(s.docs, documentID)
	return true
}

// List returns all documents, newest first.
func (s *Store) List() []*Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
