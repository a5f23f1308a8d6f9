package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists all processed documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.orchestrator.Documents().List()

	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, map[string]any{
			"doc_id":        d.DocumentID,
			"filename":      d.Filename,
			"source_format": d.SourceFormat,
			"content_hash":  d.ContentHash,
			"chunk_count":   d.ChunkCount,
			"created_at":    d.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": out})
}

// handleGetChunks returns the full chunk sequence of one document. This
// is the JSON export surface: {text, metadata} pairs in emission order.
func (s *Server) handleGetChunks(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	doc := s.orchestrator.Documents().Get(docID)
	if doc == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":        doc.DocumentID,
		"filename":      doc.Filename,
		"source_format": doc.SourceFormat,
		"chunks":        doc.Chunks(),
	})
}

// handleDeleteDocument removes a document locally and, when a sink is
// configured, downstream as well.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	if !s.orchestrator.Documents().Delete(docID) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	if sinkClient := s.orchestrator.SinkClient(); sinkClient != nil {
		if err := sinkClient.DeleteDocument(r.Context(), docID); err != nil {
			s.log.Error("sink delete failed", "doc_id", docID, "error", err)
			jsonError(w, "deleted locally; sink delete failed: "+err.Error(), http.StatusBadGateway)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": docID})
}
