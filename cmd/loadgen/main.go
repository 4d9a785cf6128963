// loadgen hammers the running server with concurrent identical search
// events and verifies that the aggregated count matches exactly, i.e.
// no updates were lost under contention.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	baseURL       = "http://localhost:8080"
	region        = "Seoul"
	totalRequests = 200
	concurrency   = 20
)

func main() {
	client := &http.Client{Timeout: 5 * time.Second}

	// Fresh keyword per run so previous runs do not skew the count.
	keyword := "chicken-" + uuid.New().String()[:8]
	userID := "loadgen-user"

	body, _ := json.Marshal(map[string]string{
		"user_id": userID,
		"keyword": keyword,
		"region":  region,
	})

	var successCount atomic.Int32
	var failCount atomic.Int32

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			resp, err := client.Post(baseURL+"/api/searches", "application/json", bytes.NewReader(body))
			if err != nil {
				failCount.Add(1)
				return
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusNoContent {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== SEARCH LOAD RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", successCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=========================================")

	// Query a generous top-N and find our keyword's final count. The
	// popular-search cache is keyed by (region, limit), so an unusual
	// limit avoids reading a stale cached page.
	resp, err := client.Get(fmt.Sprintf("%s/api/searches/popular?region=%s&limit=97", baseURL, region))
	if err != nil {
		log.Fatalf("popular query failed: %v", err)
	}
	defer resp.Body.Close()

	var popular struct {
		Results []struct {
			Keyword string `json:"keyword"`
			Count   int64  `json:"count"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&popular); err != nil {
		log.Fatalf("decode popular response: %v", err)
	}

	var finalCount int64
	for _, r := range popular.Results {
		if r.Keyword == keyword {
			finalCount = r.Count
		}
	}

	if finalCount == int64(successCount.Load()) {
		fmt.Printf("PASS: final count %d matches %d accepted searches\n", finalCount, successCount.Load())
	} else {
		fmt.Printf("FAIL: expected count %d, got %d\n", successCount.Load(), finalCount)
	}
}
