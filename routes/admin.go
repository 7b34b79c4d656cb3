package routes

import (
	"net/http"

	"regulatory-chatbot-backend/internal/config"
	"regulatory-chatbot-backend/services"
	"regulatory-chatbot-backend/utils"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes registers corpus management endpoints: triggering a full
// ingestion run and inspecting the collection.
func SetupAdminRoutes(router *gin.Engine, cfg *config.Config, ingestion *services.IngestionService, store services.VectorCollection) {
	// Synchronous on purpose: the corpus is small and the caller wants the
	// per-document report back.
	router.POST("/ingest", func(c *gin.Context) {
		summary := ingestion.IngestAll(c.Request.Context(), cfg.ManifestPath())
		status := http.StatusOK
		if !summary.Success {
			status = http.StatusInternalServerError
		}
		c.JSON(status, summary)
	})

	router.GET("/collection/stats", func(c *gin.Context) {
		count, err := store.Count(c.Request.Context())
		if err != nil {
			utils.RespondWithServiceUnavailable(c, "Vector store unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"collection":  store.Name(),
			"chunk_count": count,
		})
	})

	// Per-document view of the collection, aggregated from chunk metadata.
	router.GET("/collection/documents", func(c *gin.Context) {
		_, metadatas, err := store.Get(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read collection contents", gin.H{"error": err.Error()})
			return
		}

		type docEntry struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Chunks int    `json:"chunks"`
		}
		byID := make(map[string]*docEntry)
		var order []string
		for _, meta := range metadatas {
			id, _ := meta["id"].(string)
			if id == "" {
				id = "unknown"
			}
			entry, ok := byID[id]
			if !ok {
				title, _ := meta["titulo"].(string)
				entry = &docEntry{ID: id, Title: title}
				byID[id] = entry
				order = append(order, id)
			}
			entry.Chunks++
		}

		documents := make([]docEntry, 0, len(order))
		for _, id := range order {
			documents = append(documents, *byID[id])
		}
		c.JSON(http.StatusOK, gin.H{
			"collection": store.Name(),
			"documents":  documents,
		})
	})
}
