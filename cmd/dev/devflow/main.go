package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"paymentplan/pkg/config"
	"paymentplan/pkg/session"
)

const samplePlan = `{
  "reference": "devflow",
  "principal": "100000",
  "downPaymentAmount": "20000",
  "monthlyInterestRate": "1.5",
  "installmentCount": 10,
  "startDate": "2025-01-01",
  "currency": "TRY",
  "interimPayments": [{"month": 5, "amount": "10000"}]
}`

// devflow exercises a running API end to end: mint a session token, store a
// plan, then read the plan and its timeline back.
func main() {
	var (
		baseURL  = flag.String("base-url", "", "API base url (defaults to http://localhost<HTTP_ADDR>)")
		tenantID = flag.String("tenant", "dev-tenant", "tenant id placed in the session token")
		secret   = flag.String("secret", "", "SESSION_SECRET used by the server")
		file     = flag.String("file", "", "JSON plan body (defaults to a built-in sample)")
	)
	flag.Parse()

	cfg := config.Load()
	if *baseURL == "" {
		*baseURL = defaultBaseURL(cfg.HTTPAddr)
	}
	if *secret == "" {
		*secret = cfg.Session.Secret
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "missing -secret (or SESSION_SECRET in env/.env)")
		os.Exit(2)
	}

	body := []byte(samplePlan)
	if *file != "" {
		b, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", *file, err)
			os.Exit(1)
		}
		body = b
	}

	token, err := session.Sign(*tenantID, "devflow", cfg.Session.Audience, *secret, time.Now(), 15*time.Minute)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 20 * time.Second}

	status, created, err := do(ctx, client, http.MethodPost, *baseURL+"/v1/plans", token, body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create plan: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("POST /v1/plans -> %d\n%s\n", status, created)
	if status != http.StatusCreated {
		os.Exit(1)
	}

	var plan struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(created, &plan); err != nil || plan.ID == "" {
		fmt.Fprintf(os.Stderr, "unexpected create response: %v\n", err)
		os.Exit(1)
	}

	status, evs, err := do(ctx, client, http.MethodGet, *baseURL+"/v1/plans/"+plan.ID+"/events", token, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list events: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("GET /v1/plans/%s/events -> %d\n%s\n", plan.ID, status, evs)
}

func do(ctx context.Context, client *http.Client, method, url, token string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	return resp.StatusCode, b, err
}

func defaultBaseURL(httpAddr string) string {
	addr := strings.TrimSpace(httpAddr)
	if addr == "" {
		addr = ":8081"
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
