package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Result 记录单次请求的结果，便于按状态码聚合。
type Result struct {
	Status  int
	Body    string
	Err     error
	Latency time.Duration
}

var menuNames = []string{"ブレンドコーヒー", "カフェラテ", "アールグレイ", "チョコレートケーキ", "未知の商品"}

func main() {
	baseURL := flag.String("base", "http://localhost:3002", "server base url")
	adminToken := flag.String("admin-token", "", "X-Admin-Token for admin endpoints")
	tables := flag.Int("tables", 20, "distinct tables")
	perTable := flag.Int("orders", 10, "orders per table")
	concurrency := flag.Int("c", 50, "max concurrency")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}
	headers := map[string]string{}
	if *adminToken != "" {
		headers["X-Admin-Token"] = *adminToken
	}

	// 1) 多桌并发下单
	total := *tables * *perTable
	fmt.Printf("start order test: tables=%d orders=%d concurrency=%d\n", *tables, total, *concurrency)
	results := fanOut(total, *concurrency, func(i int) Result {
		body := map[string]string{
			"qr_id":   tableName(i % *tables),
			"menu_id": menuNames[i%len(menuNames)],
		}
		return postJSON(client, *baseURL+"/api/orders", body, nil)
	})
	printSummary("place_order", results)

	// 2) 逐桌结账，同时继续向这些桌下单
	fmt.Printf("\nstart checkout race: %d checkouts with %d concurrent late orders\n", *tables, *tables)
	results = fanOut(2*(*tables), *concurrency, func(i int) Result {
		table := tableName(i / 2)
		if i%2 == 0 {
			return postJSON(client, *baseURL+"/api/admin/checkout", map[string]string{"table_id": table}, headers)
		}
		return postJSON(client, *baseURL+"/api/orders", map[string]string{"qr_id": table, "menu_id": menuNames[0]}, nil)
	})
	printSummary("checkout_race", results)

	// 3) 剩余未结订单都应晚于本桌结账
	leftover := 0
	for t := 0; t < *tables; t++ {
		var orders []json.RawMessage
		if err := getJSON(client, *baseURL+"/api/orders/"+tableName(t), &orders); err != nil {
			fmt.Println("list err:", err)
			continue
		}
		leftover += len(orders)
	}
	fmt.Printf("\nopen orders after checkout race: %d (at most %d expected)\n", leftover, *tables)
}

func tableName(i int) string { return fmt.Sprintf("table-%03d", i+1) }

func fanOut(n, concurrency int, fn func(i int) Result) []Result {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = fn(idx)
		}(i)
	}

	wg.Wait()
	return results
}

func postJSON(client *http.Client, url string, body any, headers map[string]string) Result {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return Result{Err: err, Latency: time.Since(start)}
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return Result{Status: resp.StatusCode, Body: string(out), Latency: time.Since(start)}
}

func getJSON(client *http.Client, url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// printSummary 输出状态码分布与延迟分位数。
func printSummary(name string, results []Result) {
	count := map[int]int{}
	errCount := 0
	latencies := make([]time.Duration, 0, len(results))
	var sample string
	for _, r := range results {
		latencies = append(latencies, r.Latency)
		if r.Err != nil {
			errCount++
			continue
		}
		count[r.Status]++
		if r.Status >= 400 && sample == "" {
			sample = r.Body
		}
	}

	fmt.Printf("[%s] http status summary:\n", name)
	for _, code := range []int{200, 400, 401, 403, 404, 429, 500} {
		if count[code] > 0 {
			fmt.Printf("  %d: %d\n", code, count[code])
		}
	}
	if errCount > 0 {
		fmt.Printf("  transport errors: %d\n", errCount)
	}
	if sample != "" {
		fmt.Printf("  first error body: %s\n", sample)
	}

	if len(latencies) == 0 {
		return
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	pct := func(p float64) time.Duration { return latencies[int(float64(len(latencies)-1)*p)] }
	fmt.Printf("  latency p50=%v p95=%v max=%v\n", pct(0.50), pct(0.95), latencies[len(latencies)-1])
}
