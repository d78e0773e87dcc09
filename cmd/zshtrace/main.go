package main

import (
	"fmt"
	"log"
	"os"

	"zshtrace-mcp/internal/speedscope"
	"zshtrace-mcp/internal/zshtrace"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <trace-file>", os.Args[0])
	}
	inputPath := os.Args[1]

	records, err := zshtrace.ReadTraceFile(inputPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	zshtrace.SortChronological(records)
	timeline := zshtrace.BuildTimeline(records)

	outputPath := speedscope.OutputPath(inputPath)
	if err := speedscope.WriteFile(outputPath, speedscope.Build(inputPath, timeline)); err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Println(outputPath)
}
