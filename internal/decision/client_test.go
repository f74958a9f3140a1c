package decision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quotebot/internal/domain"
)

func testApplicant() domain.Applicant {
	income := 5000.0
	return domain.Applicant{FirstName: "Alice", MonthlyIncome: &income}
}

func TestSubmitReturnsDecision(t *testing.T) {
	var received domain.Applicant
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"decision": "approved"}`)); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, 2*time.Second)
	verdict, err := client.Submit(context.Background(), testApplicant())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if verdict != "approved" {
		t.Errorf("Expected approved, got %q", verdict)
	}
	if received.FirstName != "Alice" {
		t.Errorf("Expected firstName in payload, got %+v", received)
	}
	if received.MonthlyIncome == nil || *received.MonthlyIncome != 5000 {
		t.Errorf("Expected monthlyIncome in payload, got %+v", received.MonthlyIncome)
	}
}

func TestSubmitNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, 2*time.Second)
	_, err := client.Submit(context.Background(), testApplicant())

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected RequestError, got %v", err)
	}
	if reqErr.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status 502 in error, got %d", reqErr.StatusCode)
	}
}

func TestSubmitNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	client := New(srv.URL, 2*time.Second)
	_, err := client.Submit(context.Background(), testApplicant())

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected RequestError, got %v", err)
	}
	if reqErr.StatusCode != 0 {
		t.Errorf("Expected no status for network error, got %d", reqErr.StatusCode)
	}
}

func TestSubmitMissingDecisionField(t *testing.T) {
	for name, body := range map[string]string{
		"empty object":  `{}`,
		"wrong field":   `{"status": "approved"}`,
		"empty value":   `{"decision": ""}`,
		"not even json": `<html>oops</html>`,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if _, err := w.Write([]byte(body)); err != nil {
				t.Errorf("Failed to write response: %v", err)
			}
		}))

		client := New(srv.URL, 2*time.Second)
		_, err := client.Submit(context.Background(), testApplicant())
		srv.Close()

		var formatErr *ResponseFormatError
		if !errors.As(err, &formatErr) {
			t.Errorf("%s: expected ResponseFormatError, got %v", name, err)
		}
	}
}
