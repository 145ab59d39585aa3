// Copyright 2025 Helvetic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// laborsense-mcp exposes the knowledge base over the Model Context Protocol
// on stdio: search, AI impact assessment, job trends and the learning loop.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/helvetic-systems/laborsense"
	"github.com/helvetic-systems/laborsense/ai"
)

const (
	serverName    = "swiss-ai-labor-market"
	serverVersion = "0.1.0"
)

func main() {
	// Keep stdio clean for the protocol; log warnings and errors to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	dataDir := os.Getenv("LABORSENSE_DATA")
	if dataDir == "" {
		dataDir = "./data"
	}

	aiConfig := ai.DefaultConfig()
	if host := os.Getenv("LABORSENSE_EMBEDDING_HOST"); host != "" {
		aiConfig.Host = host
	}
	if model := os.Getenv("LABORSENSE_EMBEDDING_MODEL"); model != "" {
		aiConfig.Model = model
	}

	kb, err := laborsense.Open(dataDir, laborsense.WithAIConfig(aiConfig), laborsense.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open knowledge base: %v\n", err)
		os.Exit(1)
	}
	defer kb.Close()

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createSearchTool(), handleSearch(kb, logger))
	mcpServer.AddTool(createAIImpactTool(), handleAIImpact(kb, logger))
	mcpServer.AddTool(createJobTrendsTool(), handleJobTrends(logger))
	mcpServer.AddTool(createRecordClickTool(), handleRecordClick(kb))
	mcpServer.AddTool(createRecordFeedbackTool(), handleRecordFeedback(kb))
	mcpServer.AddTool(createLearningStatsTool(), handleLearningStats(kb))

	if err := server.ServeStdio(mcpServer); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server failed: %v\n", err)
		os.Exit(1)
	}
}
