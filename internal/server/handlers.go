package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "email-classifier/internal/common/errors"
	"email-classifier/internal/models"
)

func (s *Server) home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"AppName":     s.cfg.App.Name,
		"ProcessPath": ProcessPath,
	})
}

// process answers 200 for every well-formed request, including upstream
// failures, which surface as categoria "Erro" in the body.
func (s *Server) process(c *gin.Context) {
	var req models.ClassificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errors.HandleRequestError(c, apperrors.NewInvalidRequestBodyError(err))
		return
	}
	if req.EmailText == "" {
		s.errors.HandleRequestError(c, apperrors.NewEmailTextMissingError())
		return
	}

	result := s.classifier.Classify(c.Request.Context(), req.EmailText)
	c.JSON(http.StatusOK, result.Classification)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}
