package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"postsmith/internal/domain"
	"postsmith/internal/pipeline"
)

type generateRequest struct {
	Query string `json:"query"`
}

type generateResponse struct {
	Query         string            `json:"query"`
	SearchResults json.RawMessage   `json:"searchResults"`
	URLs          []string          `json:"urls"`
	Documents     []documentPayload `json:"documents"`
	Summaries     []string          `json:"summaries"`
	Post          string            `json:"post"`
}

type documentPayload struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) handleGeneratePost(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "body must be JSON with a query field"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "query is empty"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.runTimeout)
	defer cancel()

	result, err := s.pipeline.Run(ctx, query)
	if err != nil {
		s.log.ErrorContext(ctx, "Pipeline run failed",
			"error", err,
			"query", query)

		c.JSON(http.StatusBadGateway, pipelineErrorResponse(err))
		return
	}

	if _, err = s.db.SaveRun(ctx, result); err != nil {
		s.log.ErrorContext(ctx, "Failed to save run",
			"error", err,
			"query", query)
	}

	if err = s.notifier.SendPost(ctx, query, result.Post); err != nil {
		s.log.ErrorContext(ctx, "Failed to deliver post",
			"error", err,
			"query", query)
	}

	docs := make([]documentPayload, 0, len(result.Documents))
	for _, doc := range result.Documents {
		docs = append(docs, documentPayload{
			URL:   doc.URL,
			Title: doc.Title,
			Text:  doc.Text,
		})
	}

	c.JSON(http.StatusOK, generateResponse{
		Query:         result.Query,
		SearchResults: result.SearchResults,
		URLs:          result.URLs,
		Documents:     docs,
		Summaries:     result.Summaries,
		Post:          result.Post,
	})
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	runs, err := s.db.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.log.ErrorContext(c.Request.Context(), "Failed to list runs",
			"error", err,
			"limit", limit)

		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to list runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleListTopics(c *gin.Context) {
	topics, err := s.db.ListTopics(c.Request.Context())
	if err != nil {
		s.log.ErrorContext(c.Request.Context(), "Failed to list topics",
			"error", err)

		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to list topics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

func (s *Server) handleAddTopic(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "body must be JSON with a query field"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "query is empty"})
		return
	}

	if err := s.db.AddTopic(c.Request.Context(), query); err != nil {
		s.log.ErrorContext(c.Request.Context(), "Failed to add topic",
			"error", err,
			"query", query)

		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to add topic"})
		return
	}

	c.Status(http.StatusCreated)
}

func (s *Server) handleRemoveTopic(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "id must be an integer"})
		return
	}

	if err = s.db.RemoveTopic(c.Request.Context(), id); err != nil {
		s.log.ErrorContext(c.Request.Context(), "Failed to remove topic",
			"error", err,
			"topicID", id)

		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to remove topic"})
		return
	}

	c.Status(http.StatusNoContent)
}

func pipelineErrorResponse(err error) errorResponse {
	resp := errorResponse{Error: err.Error()}

	var stageErr *pipeline.Error
	if errors.As(err, &stageErr) {
		resp.Stage = string(stageErr.Stage)
	}

	var networkErr *domain.NetworkError
	var parseErr *domain.ParseError
	var fetchErr *domain.FetchError
	var modelErr *domain.ModelError

	switch {
	case errors.As(err, &networkErr):
		resp.Kind = "network"
	case errors.As(err, &parseErr):
		resp.Kind = "parse"
	case errors.As(err, &fetchErr):
		resp.Kind = "fetch"
	case errors.As(err, &modelErr):
		resp.Kind = "model"
	}

	return resp
}
