package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-resty/resty/v2"

	"github.com/gil906/Python-solver-stepbystep/internal/trace"
	"github.com/gil906/Python-solver-stepbystep/internal/trace/export"
)

func main() {
	server := flag.String("server", "http://localhost:8000", "Trace service base URL")
	code := flag.String("code", "", "Inline program instead of files")
	outDir := flag.String("out", ".", "Directory for saved traces")
	formatName := flag.String("format", "json", "Trace format: json, yaml, or toml")
	timeout := flag.Duration("timeout", 30*time.Second, "Per-request timeout")
	flag.Parse()

	format, err := export.Parse(*formatName)
	if err != nil {
		log.Fatalf("Bad format: %v", err)
	}

	patterns := flag.Args()
	if *code == "" && len(patterns) == 0 {
		fmt.Fprintln(os.Stderr, "usage: tracer [flags] [file patterns...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Cannot create output directory: %v", err)
	}

	client := resty.New().
		SetBaseURL(*server).
		SetTimeout(*timeout).
		SetHeader("Content-Type", "application/json")

	failed := 0

	if *code != "" {
		if err := traceOne(client, "inline", *code, *outDir, format); err != nil {
			log.Printf("inline: %v", err)
			failed++
		}
	}

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			log.Fatalf("Bad pattern %q: %v", pattern, err)
		}
		if len(matches) == 0 {
			log.Printf("No files match %q", pattern)
			failed++
			continue
		}

		for _, path := range matches {
			src, err := os.ReadFile(path)
			if err != nil {
				log.Printf("%s: %v", path, err)
				failed++
				continue
			}
			if err := traceOne(client, path, string(src), *outDir, format); err != nil {
				log.Printf("%s: %v", path, err)
				failed++
			}
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// traceOne submits one program and saves its trace under outDir.
func traceOne(client *resty.Client, name, code, outDir string, format export.Format) error {
	var res trace.Result
	resp, err := client.R().
		SetBody(map[string]string{"code": code}).
		SetResult(&res).
		Post("/api/run")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("server returned %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}

	outPath := filepath.Join(outDir, stem(name)+"."+format.Ext())
	if err := export.Save(outPath, &res); err != nil {
		return err
	}

	fmt.Printf("%-30s %4d steps  %-10s %s\n", name, len(res.Trace), outcome(&res), outPath)
	return nil
}

// outcome reduces a result to one word, or the exception's final line.
func outcome(res *trace.Result) string {
	switch {
	case res.TimedOut:
		return "timed-out"
	case res.Truncated:
		return "truncated"
	case res.Error != "":
		lines := strings.Split(strings.TrimSpace(res.Error), "\n")
		return lines[len(lines)-1]
	}
	return "ok"
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
