package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

var (
	httpClient = &http.Client{Timeout: 5 * time.Second}

	remoteMu  sync.RWMutex
	remoteURI string
	remoteJob = "product-api"
)

// SetRemote enables shipping of every entry to a Loki-compatible push
// endpoint. An empty uri disables it.
func SetRemote(uri, job string) {
	remoteMu.Lock()
	defer remoteMu.Unlock()
	remoteURI = uri
	if job != "" {
		remoteJob = job
	}
}

func remoteTarget() (string, string) {
	remoteMu.RLock()
	defer remoteMu.RUnlock()
	return remoteURI, remoteJob
}

// sendLog ships the entry in the background; failures only reach stderr.
func sendLog(level, message string, attrs []slog.Attr) {
	uri, job := remoteTarget()
	if uri == "" {
		return
	}

	go func() {
		payload, err := json.Marshal(buildLogEntry(job, level, message, attrs))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal remote log entry: %v\n", err)
			return
		}

		req, err := http.NewRequest(http.MethodPost, uri, bytes.NewReader(payload))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create remote log request: %v\n", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to send remote log: %v\n", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			fmt.Fprintf(os.Stderr, "Remote log returned error status: %d\n", resp.StatusCode)
		}
	}()
}
