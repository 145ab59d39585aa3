package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createSearchTool returns the search_labor_market tool definition
func createSearchTool() mcp.Tool {
	return mcp.NewTool("search_labor_market",
		mcp.WithDescription("Search the Swiss labor market knowledge base for information about employment, AI impact, industries, and job trends. Queries may be German or English."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query in natural language (German or English)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 5, max: 20)"),
		),
		mcp.WithString("industry",
			mcp.Description("Filter by industry (e.g., \"Finanzdienstleistungen\", \"IT\")"),
		),
		mcp.WithString("canton",
			mcp.Description("Filter by Swiss canton (e.g., \"ZH\", \"Zürich\")"),
		),
		mcp.WithString("timeframe",
			mcp.Description("Filter by timeframe (e.g., \"2024\", \"2020-2024\", \"last_2_years\")"),
		),
		mcp.WithString("source_type",
			mcp.Description("Filter by source type: bfs, news, research"),
		),
	)
}

// createAIImpactTool returns the get_ai_impact tool definition
func createAIImpactTool() mcp.Tool {
	return mcp.NewTool("get_ai_impact",
		mcp.WithDescription("Get AI impact analysis for a specific industry or job role in Switzerland: impact score (1-10), reasoning, key factors, related entities and recommendations."),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Industry or job role to analyze (e.g., \"Finanzdienstleistungen\", \"Software Developer\")"),
		),
		mcp.WithString("target_type",
			mcp.Required(),
			mcp.Enum("industry", "job_role"),
			mcp.Description("Type of target to analyze"),
		),
	)
}

// createJobTrendsTool returns the get_job_trends tool definition
func createJobTrendsTool() mcp.Tool {
	return mcp.NewTool("get_job_trends",
		mcp.WithDescription("Get Swiss job market trends: employment, unemployment, wages, job postings or AI adoption, as a time series with percent changes and insights."),
		mcp.WithString("metric",
			mcp.Required(),
			mcp.Enum("employment", "unemployment", "wages", "job_postings", "ai_adoption"),
			mcp.Description("The metric to retrieve"),
		),
		mcp.WithString("industry",
			mcp.Description("Optional: Filter by industry"),
		),
		mcp.WithString("canton",
			mcp.Description("Optional: Filter by Swiss canton"),
		),
		mcp.WithString("timeframe",
			mcp.Description("Optional: Timeframe like \"2020-2024\", \"last_5_years\""),
		),
	)
}

// createRecordClickTool returns the record_click tool definition
func createRecordClickTool() mcp.Tool {
	return mcp.NewTool("record_click",
		mcp.WithDescription("Record that a search result was useful. Clicks raise the document's ranking in future searches for similar queries."),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("ID of the clicked document"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query that surfaced the document"),
		),
	)
}

// createRecordFeedbackTool returns the record_feedback tool definition
func createRecordFeedbackTool() mcp.Tool {
	return mcp.NewTool("record_feedback",
		mcp.WithDescription("Rate a search result 1-5. Consistently high ratings boost a document, consistently low ratings demote it."),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("ID of the rated document"),
		),
		mcp.WithNumber("rating",
			mcp.Required(),
			mcp.Description("Rating from 1 (not relevant) to 5 (highly relevant)"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query that surfaced the document"),
		),
	)
}

// createLearningStatsTool returns the learning_stats tool definition
func createLearningStatsTool() mcp.Tool {
	return mcp.NewTool("learning_stats",
		mcp.WithDescription("Get learning loop statistics: search and click totals, click-through rate, top queries, top documents and the 30-day relevance curve."),
	)
}
