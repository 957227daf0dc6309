package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandeepkv93/wird/internal/model"
)

func TestHTTPSinkPushesRecord(t *testing.T) {
	var gotPath, gotMethod, gotRequestID string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotRequestID = r.Header.Get("X-Request-ID")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := NewHTTPSink(srv.URL+"/", "device-1", time.Second)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	rec := model.DailyRecord{Date: model.NewDate(2024, 1, 5), MorningDone: true}
	if err := sink.Push(context.Background(), rec); err != nil {
		t.Fatalf("push: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/mirror/records/2024-01-05" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotRequestID == "" {
		t.Fatal("expected request id header")
	}
	if gotBody["device"] != "device-1" || gotBody["morning_done"] != true || gotBody["date"] != "2024-01-05" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func TestHTTPSinkReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sink, err := NewHTTPSink(srv.URL, "", time.Second)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	err = sink.Push(context.Background(), model.DailyRecord{Date: model.NewDate(2024, 1, 5)})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestNewHTTPSinkValidatesURL(t *testing.T) {
	if _, err := NewHTTPSink("", "", 0); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewHTTPSink("not a url", "", 0); err == nil {
		t.Fatal("expected error for invalid url")
	}
}
