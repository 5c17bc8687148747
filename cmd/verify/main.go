package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/ridloal/woodkits-store/internal/platform/config"
	pricingApi "github.com/ridloal/woodkits-store/internal/pricing/api"
	"github.com/ridloal/woodkits-store/internal/product/domain"
)

type check struct {
	name string
	run  func(ctx context.Context) (string, error)
}

type verifier struct {
	baseURL  string
	client   *http.Client
	products []domain.Product
}

func newVerifier(baseURL string, timeout time.Duration) *verifier {
	return &verifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (v *verifier) checks() []check {
	return []check{
		{name: "health", run: v.checkHealth},
		{name: "catalog", run: v.checkCatalog},
		{name: "pricing", run: v.checkPricing},
	}
}

// run executes every check in order, writes one line per check to out and
// reports whether all of them passed.
func (v *verifier) run(ctx context.Context, out io.Writer) bool {
	ok := true
	for _, c := range v.checks() {
		start := time.Now()
		detail, err := c.run(ctx)
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			ok = false
			fmt.Fprintf(out, "FAIL  %-8s %v (%s)\n", c.name, err, elapsed)
			continue
		}
		fmt.Fprintf(out, "OK    %-8s %s (%s)\n", c.name, detail, elapsed)
	}
	return ok
}

func (v *verifier) do(ctx context.Context, method, path string, body interface{}, want int, dst interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, v.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%s %s: status %d, want %d: %s", method, path, resp.StatusCode, want, strings.TrimSpace(string(snippet)))
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (v *verifier) checkHealth(ctx context.Context) (string, error) {
	var body struct {
		Status string `json:"status"`
	}
	if err := v.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, &body); err != nil {
		return "", err
	}
	return "status " + body.Status, nil
}

func (v *verifier) checkCatalog(ctx context.Context) (string, error) {
	if err := v.do(ctx, http.MethodGet, "/api/v1/products", nil, http.StatusOK, &v.products); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d active products", len(v.products)), nil
}

func (v *verifier) checkPricing(ctx context.Context) (string, error) {
	if len(v.products) == 0 {
		return "skipped, catalog is empty", nil
	}
	p := v.products[0]
	req := map[string]interface{}{"productId": p.ID, "configuration": map[string]interface{}{}}

	var resp pricingApi.CalculateResponse
	if err := v.do(ctx, http.MethodPost, "/api/v1/pricing/calculate", req, http.StatusOK, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", errors.New("pricing response not marked successful")
	}
	if resp.Data.Pricing.TotalPrice < 0 {
		return "", fmt.Errorf("negative total %v for %s", resp.Data.Pricing.TotalPrice, p.ID)
	}
	return fmt.Sprintf("%s default total %v %s", p.Slug, resp.Data.Pricing.TotalPrice, resp.Data.Pricing.Currency), nil
}

func main() {
	flags := pflag.NewFlagSet("verify", pflag.ExitOnError)
	baseURL := flags.String("base-url", config.GetEnv("STORE_BASE_URL", "http://localhost:8080"), "store service base URL")
	timeout := flags.Duration("timeout", 10*time.Second, "per request timeout")
	_ = flags.Parse(os.Args[1:])

	perRequest := *timeout
	ctx, cancel := context.WithTimeout(context.Background(), 3*perRequest)
	defer cancel()

	if !newVerifier(*baseURL, perRequest).run(ctx, os.Stdout) {
		os.Exit(1)
	}
}
