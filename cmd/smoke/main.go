package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/agenthands/wardwatch/internal/core/cluster"
)

// smoke posts the sample tables to a running server and checks the reply.
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	transfers := flag.String("transfers", "testdata/transfers.csv", "transfers table")
	micro := flag.String("micro", "testdata/microbiology.csv", "microbiology table")
	wait := flag.Duration("wait", 2*time.Second, "time to wait for the server to start")
	flag.Parse()

	time.Sleep(*wait)

	fmt.Println("1. Checking health...")
	if err := checkHealth(*baseURL + "/healthz"); err != nil {
		fmt.Printf("FAILED: health check: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("PASSED: health check")

	fmt.Println("2. Posting tables...")
	doc, err := postTables(*baseURL+"/cluster", *transfers, *micro)
	if err != nil {
		fmt.Printf("FAILED: cluster: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("PASSED: cluster (%d nodes, %d edges, %d clusters)\n", len(doc.Nodes), len(doc.Edges), len(doc.Clusters))
	fmt.Println(doc.Summary)
}

func checkHealth(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		if err != nil {
			return fmt.Errorf("unexpected status %d (body unreadable: %v)", resp.StatusCode, err)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return nil
}

func postTables(url, transfersPath, microPath string) (*cluster.Document, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for field, path := range map[string]string{"transfer_file": transfersPath, "micro_file": microPath} {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		fw, err := w.CreateFormFile(field, filepath.Base(path))
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := (&http.Client{Timeout: 30 * time.Second}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, respBody)
	}

	var doc cluster.Document
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &doc, nil
}
