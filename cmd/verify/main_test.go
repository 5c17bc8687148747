package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newStore(t *testing.T, products string, pricingStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(products))
	})
	mux.HandleFunc("/api/v1/pricing/calculate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(pricingStatus)
		w.Write([]byte(`{"success":true,"data":{"productId":"p1","pricing":{"basePrice":500,"sizeAdjustment":0,"colorCost":0,"totalPrice":500,"currency":"ILS"}}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifier_AllChecksPass(t *testing.T) {
	srv := newStore(t, `[{"id":"p1","slug":"stairs","basePrice":500,"currency":"ILS"}]`, http.StatusOK)
	var out bytes.Buffer

	ok := newVerifier(srv.URL+"/", time.Second).run(context.Background(), &out)

	assert.True(t, ok)
	assert.Contains(t, out.String(), "OK    health")
	assert.Contains(t, out.String(), "1 active products")
	assert.Contains(t, out.String(), "stairs default total 500 ILS")
}

func TestVerifier_EmptyCatalogSkipsPricing(t *testing.T) {
	srv := newStore(t, `[]`, http.StatusInternalServerError)
	var out bytes.Buffer

	ok := newVerifier(srv.URL, time.Second).run(context.Background(), &out)

	assert.True(t, ok)
	assert.Contains(t, out.String(), "skipped, catalog is empty")
}

func TestVerifier_PricingFailure(t *testing.T) {
	srv := newStore(t, `[{"id":"p1","slug":"stairs"}]`, http.StatusNotFound)
	var out bytes.Buffer

	ok := newVerifier(srv.URL, time.Second).run(context.Background(), &out)

	assert.False(t, ok)
	assert.Contains(t, out.String(), "FAIL  pricing")
	assert.Contains(t, out.String(), "status 404, want 200")
}

func TestVerifier_Unreachable(t *testing.T) {
	var out bytes.Buffer
	ok := newVerifier("http://127.0.0.1:1", 200*time.Millisecond).run(context.Background(), &out)

	assert.False(t, ok)
	assert.Contains(t, out.String(), "FAIL  health")
}
