package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"zshtrace-mcp/internal/analyzer"
	"zshtrace-mcp/internal/speedscope"
	"zshtrace-mcp/internal/zshtrace"
)

// Timeline cache
var timelineCache = make(map[string]*zshtrace.Timeline)

func loadTimeline(filePath string) (*zshtrace.Timeline, error) {
	records, err := zshtrace.ReadTraceFile(filePath)
	if err != nil {
		return nil, err
	}
	zshtrace.SortChronological(records)
	tl := zshtrace.BuildTimeline(records)
	timelineCache[filePath] = tl
	return tl, nil
}

func main() {
	// Create MCP server
	s := server.NewMCPServer(
		"zshtrace-profiler",
		"1.0.0",
		server.WithLogging(),
	)

	// Tool 1: Load Trace
	loadTraceTool := mcp.NewTool("load_trace",
		mcp.WithDescription("Load an instrumented zsh xtrace log and reconstruct its call-stack timeline for analysis"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the trace log file (.log or .log.gz)"),
		),
	)

	s.AddTool(loadTraceTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filePath, err := request.RequireString("file_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		tl, err := loadTimeline(filePath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load trace: %v", err)), nil
		}

		result := fmt.Sprintf(`Trace loaded successfully!

File: %s
Frames: %d
Events: %d
Wall time: %.6f seconds

Use other tools to analyze this trace.
`,
			filePath,
			len(tl.Frames),
			len(tl.Events),
			tl.EndValue-tl.StartValue,
		)

		return mcp.NewToolResultText(result), nil
	})

	// Tool 2: Convert Trace
	convertTraceTool := mcp.NewTool("convert_trace",
		mcp.WithDescription("Convert a zsh xtrace log into a speedscope flamegraph JSON file, written next to the input"),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the trace log file"),
		),
	)

	s.AddTool(convertTraceTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filePath, err := request.RequireString("file_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		tl, ok := timelineCache[filePath]
		if !ok {
			tl, err = loadTimeline(filePath)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to load trace: %v", err)), nil
			}
		}

		outputPath := speedscope.OutputPath(filePath)
		if err := speedscope.WriteFile(outputPath, speedscope.Build(filePath, tl)); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to write flamegraph: %v", err)), nil
		}

		result := fmt.Sprintf(`Flamegraph written!

Input:  %s
Output: %s
Frames: %d
Events: %d

Open the output file in speedscope (https://www.speedscope.app) to view it.
`,
			filePath,
			outputPath,
			len(tl.Frames),
			len(tl.Events),
		)

		return mcp.NewToolResultText(result), nil
	})

	// Tool 3: Find Hotspots
	findHotspotsTool := mcp.NewTool("find_hotspots",
		mcp.WithDescription("Find the call sites consuming the most time in the trace. This is the most important tool for identifying slow shell startup code."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the loaded trace log file"),
		),
		mcp.WithNumber("top_n",
			mcp.Description("Number of top hotspots to return (default: 10)"),
		),
	)

	s.AddTool(findHotspotsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filePath, err := request.RequireString("file_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		topN := 10
		if n := request.GetFloat("top_n", 10.0); n != 10.0 {
			topN = int(n)
		}

		tl, ok := timelineCache[filePath]
		if !ok {
			return mcp.NewToolResultError("Trace not loaded. Use load_trace tool first"), nil
		}

		hotspots := analyzer.FindHotspots(tl, topN)

		var sb strings.Builder
		sb.WriteString("🔥 TOP HOTSPOTS (Call Sites Consuming Most Time)\n")
		sb.WriteString("═══════════════════════════════════════════════════\n\n")

		if len(hotspots) == 0 {
			sb.WriteString("No hotspots found.\n")
		} else {
			for i, hs := range hotspots {
				sb.WriteString(analyzer.FormatHotspot(hs, i+1))
				sb.WriteString("\n")
			}
		}

		return mcp.NewToolResultText(sb.String()), nil
	})

	// Tool 4: Find Slowest Statements
	slowestSpansTool := mcp.NewTool("find_slowest_statements",
		mcp.WithDescription("Find the individual statement executions with the longest durations. These are often the single commands responsible for a slow run."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the loaded trace log file"),
		),
		mcp.WithNumber("top_n",
			mcp.Description("Number of top statements to return (default: 10)"),
		),
	)

	s.AddTool(slowestSpansTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filePath, err := request.RequireString("file_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		topN := 10
		if n := request.GetFloat("top_n", 10.0); n != 10.0 {
			topN = int(n)
		}

		tl, ok := timelineCache[filePath]
		if !ok {
			return mcp.NewToolResultError("Trace not loaded. Use load_trace tool first"), nil
		}

		spans := analyzer.SlowestSpans(tl, topN)

		var sb strings.Builder
		sb.WriteString("🎯 SLOWEST STATEMENT EXECUTIONS\n")
		sb.WriteString("═══════════════════════════════════════════════════\n\n")

		if len(spans) == 0 {
			sb.WriteString("No statements found.\n")
		} else {
			for i, span := range spans {
				sb.WriteString(fmt.Sprintf("#%d: %s\n", i+1, span.Name))
				sb.WriteString(fmt.Sprintf("    Duration: %.6f seconds\n", span.Duration))
				if span.Code != "" {
					sb.WriteString(fmt.Sprintf("    Code: %s\n", span.Code))
				}
				if span.File != "" {
					sb.WriteString(fmt.Sprintf("    Source: %s:%d\n", span.File, span.Line))
				}
				sb.WriteString("\n")
			}
		}

		return mcp.NewToolResultText(sb.String()), nil
	})

	// Tool 5: Get Statistics
	getStatisticsTool := mcp.NewTool("get_statistics",
		mcp.WithDescription("Get comprehensive statistics about the trace including wall time, call counts, nesting depths, and unique call sites."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the loaded trace log file"),
		),
	)

	s.AddTool(getStatisticsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filePath, err := request.RequireString("file_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		tl, ok := timelineCache[filePath]
		if !ok {
			return mcp.NewToolResultError("Trace not loaded. Use load_trace tool first"), nil
		}

		stats := analyzer.ComputeStatistics(tl)

		var sb strings.Builder
		sb.WriteString("📊 TRACE STATISTICS\n")
		sb.WriteString("═══════════════════════════════════════════════════\n\n")

		sb.WriteString(fmt.Sprintf("Wall Time: %.6f seconds\n", stats.WallTime))
		sb.WriteString(fmt.Sprintf("Total Calls: %d\n", stats.TotalCalls))
		sb.WriteString(fmt.Sprintf("Total Events: %d\n", stats.TotalEvents))
		sb.WriteString(fmt.Sprintf("Call Sites: %d\n\n", stats.TotalFrames))

		sb.WriteString("Nesting Depth Statistics:\n")
		sb.WriteString(fmt.Sprintf("  Average: %.2f\n", stats.AverageStackDepth))
		sb.WriteString(fmt.Sprintf("  Maximum: %d\n\n", stats.MaxStackDepth))

		sb.WriteString(fmt.Sprintf("Source Files: %d\n", stats.UniqueFiles))

		return mcp.NewToolResultText(sb.String()), nil
	})

	// Tool 6: View Frame
	viewFrameTool := mcp.NewTool("view_frame",
		mcp.WithDescription("View a specific call site with every statement executed there and its duration. Useful for understanding what a hot function actually ran."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the loaded trace log file"),
		),
		mcp.WithNumber("frame_index",
			mcp.Required(),
			mcp.Description("Index of the frame to view (1-based, in first-seen order)"),
		),
	)

	s.AddTool(viewFrameTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filePath, err := request.RequireString("file_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		frameIdx, err := request.RequireFloat("frame_index")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		tl, ok := timelineCache[filePath]
		if !ok {
			return mcp.NewToolResultError("Trace not loaded. Use load_trace tool first"), nil
		}

		index := int(frameIdx) - 1

		if index < 0 || index >= len(tl.Frames) {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid frame index. Valid range: 1-%d", len(tl.Frames))), nil
		}

		frame := tl.Frames[index]

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("📞 FRAME #%d: %s\n", int(frameIdx), frame.Name))
		sb.WriteString("═══════════════════════════════════════════════════\n\n")
		sb.WriteString(fmt.Sprintf("Source: %s:%d\n", frame.File, frame.Line))
		sb.WriteString(fmt.Sprintf("Executions: %d\n\n", len(frame.ExecutedCode)))

		sb.WriteString("Executed code (in close order):\n\n")

		for i, span := range frame.ExecutedCode {
			sb.WriteString(fmt.Sprintf("%d. %.6f seconds\n", i+1, span.Duration))
			if span.Code != "" {
				sb.WriteString(fmt.Sprintf("   %s\n", span.Code))
			}
			sb.WriteString("\n")
		}

		return mcp.NewToolResultText(sb.String()), nil
	})

	// Start the server
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
