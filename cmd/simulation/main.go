package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api/chat/v1"

// Simplified DTOs for the script
type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Data struct {
		SessionID string `json:"session_id"`
		Answer    string `json:"answer"`
	} `json:"data"`
}

type uploadResponse struct {
	Message string `json:"message"`
	Data    struct {
		SessionID     string `json:"session_id"`
		FilesIngested int    `json:"files_ingested"`
		ChunksIndexed int    `json:"chunks_indexed"`
	} `json:"data"`
}

func main() {
	color.Cyan("=== Document Chat Simulation Client ===")

	if len(os.Args) < 2 {
		log.Fatal("Usage: simulation <file-to-upload> [more files...]")
	}

	// Phase 1: a question before any upload exercises the fallback path.
	color.Yellow("\n[1] Query without documents (fallback path)")
	sessionID, answer, err := sendQuery("", "What is the capital of France?")
	if err != nil {
		log.Fatalf("Fallback query failed: %v", err)
	}
	fmt.Printf("ASSISTANT: %s\n", answer)

	// Phase 2: upload documents into the same session.
	color.Yellow("\n[2] Uploading documents")
	up, err := uploadFiles(sessionID, os.Args[1:])
	if err != nil {
		log.Fatalf("Upload failed: %v", err)
	}
	color.Green("Indexed %d chunks from %d files (session %s)", up.Data.ChunksIndexed, up.Data.FilesIngested, up.Data.SessionID)

	// Phase 3: a scripted conversation over the uploaded documents.
	color.Yellow("\n[3] Conversation over documents (retrieval path)")
	questions := []string{
		"What are these documents about?",
		"Summarize the most important points.",
		"What about the first one?",
	}

	for _, q := range questions {
		fmt.Printf("\nUSER: %s\n", q)
		start := time.Now()
		_, answer, err := sendQuery(sessionID, q)
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}
		fmt.Printf("ASSISTANT: %s\n", answer)
		color.Magenta("(%.1fs)", time.Since(start).Seconds())
	}
}

func uploadFiles(sessionID string, paths []string) (*uploadResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		part, err := writer.CreateFormFile("files", path)
		if err != nil {
			f.Close()
			return nil, err
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return nil, err
		}
		f.Close()
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if sessionID != "" {
		req.Header.Set("X-Session-Id", sessionID)
	}

	respBody, err := do(req)
	if err != nil {
		return nil, err
	}

	var res uploadResponse
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func sendQuery(sessionID, query string) (string, string, error) {
	jsonBody, _ := json.Marshal(queryRequest{Query: query})

	req, err := http.NewRequest(http.MethodPost, baseURL+"/query", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-Id", sessionID)
	}

	respBody, err := do(req)
	if err != nil {
		return "", "", err
	}

	var res queryResponse
	if err := json.Unmarshal(respBody, &res); err != nil {
		return "", "", err
	}
	return res.Data.SessionID, res.Data.Answer, nil
}

func do(req *http.Request) ([]byte, error) {
	client := &http.Client{} // LLM calls can be slow, no timeout
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
