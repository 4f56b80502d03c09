package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"filemart/internal/config"
)

func TestCreateTransaction(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("Tbk-Api-Key-Id") != "597055555532" {
			t.Errorf("missing commerce code header")
		}
		if r.Header.Get("Tbk-Api-Key-Secret") != "test-api-key" {
			t.Errorf("missing api key header")
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"token":"tok123","url":"https://gateway.example/webpay"}`))
	}))
	defer srv.Close()

	c := NewWebpayClient(&config.Webpay{
		BaseApiURL:   srv.URL,
		CommerceCode: "597055555532",
		APIKey:       "test-api-key",
	})

	resp, err := c.CreateTransaction(context.Background(), "FMabc", "S123", 5000, "http://localhost/api/checkout/confirm")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if gotBody["buy_order"] != "FMabc" || gotBody["amount"] != float64(5000) {
		t.Errorf("request body = %v", gotBody)
	}
	if resp.RedirectURL != "https://gateway.example/webpay?token_ws=tok123" {
		t.Errorf("redirect url = %q", resp.RedirectURL)
	}
}

func TestCommitTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		w.Write([]byte(`{"buy_order":"FMabc","session_id":"S123","amount":5000,"status":"AUTHORIZED","response_code":0}`))
	}))
	defer srv.Close()

	c := NewWebpayClient(&config.Webpay{BaseApiURL: srv.URL})

	resp, err := c.CommitTransaction(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !resp.Approved() {
		t.Errorf("commit not approved: %+v", resp)
	}
	if resp.BuyOrder != "FMabc" || resp.Amount != 5000 {
		t.Errorf("commit = %+v", resp)
	}
}

func TestCommitDeclineIsNotApproved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"buy_order":"FMabc","amount":5000,"status":"FAILED","response_code":-1}`))
	}))
	defer srv.Close()

	c := NewWebpayClient(&config.Webpay{BaseApiURL: srv.URL})

	resp, err := c.CommitTransaction(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if resp.Approved() {
		t.Error("declined commit reported approved")
	}
}

func TestGatewayErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error_message":"invalid amount"}`))
	}))
	defer srv.Close()

	c := NewWebpayClient(&config.Webpay{BaseApiURL: srv.URL})

	if _, err := c.CreateTransaction(context.Background(), "FMabc", "S1", -1, "http://x"); err == nil {
		t.Error("non-2xx create succeeded")
	}
	if _, err := c.CommitTransaction(context.Background(), "tok123"); err == nil {
		t.Error("non-2xx commit succeeded")
	}
}
