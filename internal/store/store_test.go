package store

import (
	"testing"

	"github.com/tmalloy/docchunk/internal/doctree"
)

func sampleChunks(texts ...string) []doctree.Chunk {
	out := make([]doctree.Chunk, 0, len(texts))
	for _, text := range texts {
		out = append(out, doctree.Chunk{Text: text})
	}
	return out
}

func TestStore_PutGet(t *testing.T) {
	s := New()
	s.Put("doc-1", "report.docx", "docx", "hash-1", sampleChunks("a", "b"))

	doc := s.Get("doc-1")
	if doc == nil {
		t.Fatal("expected document back")
	}
	if doc.Filename != "report.docx" || doc.SourceFormat != "docx" {
		t.Errorf("unexpected identity fields: %+v", doc)
	}
	if doc.ChunkCount != 2 {
		t.Errorf("expected 2 chunks, got %d", doc.ChunkCount)
	}
	chunks := doc.Chunks()
	if len(chunks) != 2 || chunks[0].Text != "a" {
		t.Errorf("unexpected chunks: %+v", chunks)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := New()
	if s.Get("nope") != nil {
		t.Error("expected nil for missing document")
	}
}

func TestStore_ChunksAreCopied(t *testing.T) {
	s := New()
	original := sampleChunks("a")
	s.Put("doc-1", "f.txt", "txt", "h", original)

	got := s.Get("doc-1").Chunks()
	got[0].Text = "mutated"

	if s.Get("doc-1").Chunks()[0].Text != "a" {
		t.Error("caller mutation leaked into stored chunks")
	}
}

func TestStore_FindByHash(t *testing.T) {
	s := New()
	s.Put("doc-1", "f.txt", "txt", "hash-1", sampleChunks("a"))

	id, ok := s.FindByHash("hash-1")
	if !ok || id != "doc-1" {
		t.Errorf("expected doc-1 for hash-1, got %q ok=%v", id, ok)
	}
	if _, ok := s.FindByHash("unknown"); ok {
		t.Error("expected miss for unknown hash")
	}
}

func TestStore_PutReplacesAndReindexes(t *testing.T) {
	s := New()
	s.Put("doc-1", "f.txt", "txt", "hash-old", sampleChunks("a"))
	s.Put("doc-1", "f.txt", "txt", "hash-new", sampleChunks("a", "b", "c"))

	if _, ok := s.FindByHash("hash-old"); ok {
		t.Error("stale hash index entry survived replacement")
	}
	if id, ok := s.FindByHash("hash-new"); !ok || id != "doc-1" {
		t.Errorf("expected doc-1 under new hash, got %q ok=%v", id, ok)
	}
	if s.Get("doc-1").ChunkCount != 3 {
		t.Errorf("expected replaced chunk count 3, got %d", s.Get("doc-1").ChunkCount)
	}
}

func TestStore_Delete(t *testing.T) {
	s := New()
	s.Put("doc-1", "f.txt", "txt", "hash-1", sampleChunks("a"))

	if !s.Delete("doc-1") {
		t.Fatal("expected delete to report success")
	}
	if s.Get("doc-1") != nil {
		t.Error("document survived delete")
	}
	if _, ok := s.FindByHash("hash-1"); ok {
		t.Error("hash index entry survived delete")
	}
	if s.Delete("doc-1") {
		t.Error("second delete must report missing")
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := New()
	s.Put("doc-1", "first.txt", "txt", "h1", sampleChunks("a"))
	s.Put("doc-2", "second.txt", "txt", "h2", sampleChunks("b"))

	docs := s.List()
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].CreatedAt.Before(docs[1].CreatedAt) {
		t.Error("expected newest document first")
	}
}
