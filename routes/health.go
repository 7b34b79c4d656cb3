package routes

import (
	"context"
	"net/http"
	"time"

	"regulatory-chatbot-backend/services"
	"regulatory-chatbot-backend/utils"

	"github.com/gin-gonic/gin"
)

// SetupHealthRoutes registers the root status endpoint. The vector store is
// probed with a short timeout so a down Chroma degrades the report instead of
// hanging it.
func SetupHealthRoutes(router *gin.Engine, store services.VectorCollection) {
	router.NoRoute(func(c *gin.Context) {
		utils.RespondWithNotFound(c, "Route not found")
	})

	router.GET("/", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		chromaStatus := "connected"
		documents := 0
		count, err := store.Count(ctx)
		if err != nil {
			chromaStatus = "unavailable"
		} else {
			documents = count
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"service":    "regulatory-chatbot-backend",
			"chroma":     chromaStatus,
			"collection": store.Name(),
			"documents":  documents,
			"timestamp":  time.Now(),
		})
	})
}
