package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"askrelay/internal/service/resolver"
)

// AnswerResolver resolves one question for one user.
type AnswerResolver interface {
	Answer(ctx context.Context, question, userID string) (string, error)
}

// Handler wires HTTP routes to the resolution pipeline.
type Handler struct {
	resolver AnswerResolver
}

// NewHandler constructs a Handler instance.
func NewHandler(r AnswerResolver) *Handler {
	return &Handler{resolver: r}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.root)
	router.GET("/health", h.health)
	v1 := router.Group("/api/v1")
	v1.GET("/ask", h.ask)
	v1.GET("/echo", h.echo)
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "server is ready"})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) echo(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		q = "hello"
	}
	c.JSON(http.StatusOK, gin.H{"echo": q})
}

func (h *Handler) ask(c *gin.Context) {
	question := c.Query("q")
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please provide a question"})
		return
	}
	// User identity is supplied by the caller; the core requires it as an
	// explicit parameter, so unauthenticated callers get a transport-level
	// placeholder.
	userID := c.Query("user")
	if userID == "" {
		userID = "anonymous"
	}

	answer, err := h.resolver.Answer(c.Request.Context(), question, userID)
	if err != nil {
		if errors.Is(err, resolver.ErrInvalidQuestion) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "please provide a question"})
			return
		}
		// Store and gateway failures collapse to one generic response;
		// the distinction stays in the logs.
		log.Printf("answer question failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
