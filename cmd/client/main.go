package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"
)

// progressReader counts bytes handed to the HTTP client.
type progressReader struct {
	r    io.Reader
	read int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	atomic.AddInt64(&p.read, int64(n))
	return n, err
}

func (p *progressReader) Read64() int64 {
	return atomic.LoadInt64(&p.read)
}

type videoResponse struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	VideoURL *string `json:"video_url"`
}

func main() {
	server := flag.String("server", "http://localhost:8091/api/v1", "Server base URL")
	filePath := flag.String("file", "", "Path of the mp4 to upload")
	videoID := flag.String("video-id", "", "Existing video ID; a new record is created when empty")
	title := flag.String("title", "", "Title for a new record (defaults to the file name)")
	token := flag.String("token", os.Getenv("VIDEO_UPLOADER_TOKEN"), "Bearer token")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("-file is required")
	}
	if *token == "" {
		log.Fatal("-token or VIDEO_UPLOADER_TOKEN is required")
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		log.Fatalf("stat file: %v", err)
	}
	filename := filepath.Base(stat.Name())
	base := strings.TrimRight(*server, "/")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if strings.TrimSpace(*videoID) == "" {
		name := *title
		if name == "" {
			name = strings.TrimSuffix(filename, filepath.Ext(filename))
		}
		created, err := createVideo(ctx, base, *token, name)
		if err != nil {
			log.Fatalf("create video: %v", err)
		}
		*videoID = created.ID
		fmt.Printf("Created video %s (%s)\n", created.ID, created.Title)
	}

	fmt.Printf("Server: %s\n", base)
	fmt.Printf("File: %s (%d bytes)\n", filename, stat.Size())
	fmt.Printf("Video ID: %s\n", *videoID)
	fmt.Println("Press Ctrl+C to cancel...")

	body, contentType, length, err := multipartBody(file, stat.Size(), filename)
	if err != nil {
		log.Fatalf("build body: %v", err)
	}
	progress := &progressReader{r: body}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Printf("\rSent: %d/%d bytes", progress.Read64(), stat.Size())
			}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/videos/"+*videoID+"/upload", progress)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.ContentLength = length
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+*token)

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	close(done)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nUpload cancelled")
			os.Exit(1)
		}
		log.Fatalf("\nupload failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("\nHTTP %d after %s\n", resp.StatusCode, time.Since(start).Round(time.Millisecond))
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("server rejected upload: %s", string(respBody))
	}

	var video videoResponse
	if err := json.Unmarshal(respBody, &video); err != nil {
		log.Fatalf("decode response: %v", err)
	}
	if video.VideoURL != nil {
		fmt.Printf("Published: %s\n", *video.VideoURL)
	}
}

// multipartBody streams file as the "video" form field without buffering it.
// The length is known up front because the server refuses chunked uploads.
func multipartBody(file io.Reader, size int64, filename string) (io.Reader, string, int64, error) {
	var head bytes.Buffer
	writer := multipart.NewWriter(&head)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="video"; filename=%q`, filename))
	h.Set("Content-Type", "video/mp4")
	if _, err := writer.CreatePart(h); err != nil {
		return nil, "", 0, err
	}
	prefix := bytes.Clone(head.Bytes())

	head.Reset()
	if err := writer.Close(); err != nil {
		return nil, "", 0, err
	}
	suffix := head.Bytes()

	length := int64(len(prefix)) + size + int64(len(suffix))
	body := io.MultiReader(bytes.NewReader(prefix), io.LimitReader(file, size), bytes.NewReader(suffix))
	return body, writer.FormDataContentType(), length, nil
}

func createVideo(ctx context.Context, base, token, title string) (*videoResponse, error) {
	payload, err := json.Marshal(map[string]string{"title": title})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/videos", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("HTTP %d %s", resp.StatusCode, string(respBody))
	}
	var video videoResponse
	if err := json.Unmarshal(respBody, &video); err != nil {
		return nil, err
	}
	return &video, nil
}
