package routes

import (
	"net/http"

	"regulatory-chatbot-backend/internal/ai"
	"regulatory-chatbot-backend/internal/logger"
	"regulatory-chatbot-backend/middleware"
	"regulatory-chatbot-backend/models"
	"regulatory-chatbot-backend/services"
	"regulatory-chatbot-backend/utils"

	"github.com/gin-gonic/gin"
)

// SetupChatRoutes registers the question answering endpoint and the model
// listing.
func SetupChatRoutes(router *gin.Engine, chatService *services.ChatService, registry *ai.Registry) {
	router.POST("/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		if req.Model != "" && !registry.Has(req.Model) {
			utils.RespondWithError(c, http.StatusBadRequest, "unknown_model",
				"Requested model is not available", gin.H{"model": req.Model})
			return
		}

		response, err := chatService.Answer(c.Request.Context(), req.Question, req.Model, req.TopK)
		if err != nil {
			logger.Error("Chat request failed",
				"request_id", middleware.GetRequestID(c),
				"model", req.Model,
				"error", err)
			utils.RespondWithServiceUnavailable(c, "Failed to generate an answer")
			return
		}

		c.JSON(http.StatusOK, response)
	})

	router.GET("/models", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"models":  registry.AvailableModels(),
			"default": registry.DefaultModel(),
		})
	})
}
