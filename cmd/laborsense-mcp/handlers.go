package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helvetic-systems/laborsense"
	"github.com/helvetic-systems/laborsense/graph"
	"github.com/helvetic-systems/laborsense/relevance"
	"github.com/helvetic-systems/laborsense/trends"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 20
)

// handleSearch implements the search_labor_market tool
func handleSearch(kb *laborsense.KnowledgeBase, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return errorResult("query parameter is required"), nil
		}

		limit := request.GetInt("limit", defaultSearchLimit)
		if limit > maxSearchLimit {
			limit = maxSearchLimit
		}

		response := kb.Engine().Search(ctx, relevance.Query{
			Text:       query,
			Limit:      limit,
			Industry:   request.GetString("industry", ""),
			Canton:     request.GetString("canton", ""),
			SourceType: request.GetString("source_type", ""),
			Timeframe:  request.GetString("timeframe", ""),
		})

		logger.Debug("search handled", "query", query, "results", response.TotalResults)
		return jsonResult(response)
	}
}

// handleAIImpact implements the get_ai_impact tool
func handleAIImpact(kb *laborsense.KnowledgeBase, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("target")
		if err != nil || target == "" {
			return errorResult("target parameter is required"), nil
		}

		var targetType graph.EntityType
		switch request.GetString("target_type", "") {
		case "industry":
			targetType = graph.EntityIndustry
		case "job_role":
			targetType = graph.EntityJobRole
		default:
			return errorResult("target_type must be \"industry\" or \"job_role\""), nil
		}

		assessment := graph.Assess(kb.Store(), target, targetType)
		logger.Debug("impact assessed", "target", target, "found", assessment.Found)
		return jsonResult(assessment)
	}
}

// handleJobTrends implements the get_job_trends tool
func handleJobTrends(logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metric := trends.Metric(request.GetString("metric", ""))
		if !trends.ValidMetric(metric) {
			return errorResult("metric must be one of employment, unemployment, wages, job_postings, ai_adoption"), nil
		}

		response := trends.GetJobTrends(
			metric,
			request.GetString("industry", ""),
			request.GetString("canton", ""),
			request.GetString("timeframe", ""),
		)

		logger.Debug("trends handled", "metric", metric, "points", len(response.Data))
		return jsonResult(response)
	}
}

// handleRecordClick implements the record_click tool
func handleRecordClick(kb *laborsense.KnowledgeBase) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docID, err := request.RequireString("document_id")
		if err != nil || docID == "" {
			return errorResult("document_id parameter is required"), nil
		}
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return errorResult("query parameter is required"), nil
		}

		kb.Learner().RecordClick(docID, query)
		return textResult(fmt.Sprintf("Click recorded for %s", docID)), nil
	}
}

// handleRecordFeedback implements the record_feedback tool
func handleRecordFeedback(kb *laborsense.KnowledgeBase) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docID, err := request.RequireString("document_id")
		if err != nil || docID == "" {
			return errorResult("document_id parameter is required"), nil
		}
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return errorResult("query parameter is required"), nil
		}
		rating := request.GetInt("rating", 0)
		if rating < 1 || rating > 5 {
			return errorResult("rating must be between 1 and 5"), nil
		}

		kb.Learner().RecordFeedback(docID, rating, query)
		return textResult(fmt.Sprintf("Feedback (%d/5) recorded for %s", rating, docID)), nil
	}
}

// handleLearningStats implements the learning_stats tool
func handleLearningStats(kb *laborsense.KnowledgeBase) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(kb.Learner().Stats())
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("cannot encode response: %v", err)), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	result := textResult("Error: " + message)
	result.IsError = true
	return result
}
