package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIPFSClientCatAdd(t *testing.T) {
	const content = "hello ipfs"
	const hash = "QmTestHash"

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v0/cat", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("arg") != hash {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(content))
	})
	mux.HandleFunc("/api/v0/add", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Name":"blob","Hash":"` + hash + `","Size":"10"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewIPFSClient(srv.URL)

	got, err := client.Cat(context.Background(), hash)
	if err != nil {
		t.Fatalf("Cat: %v", err)
	}
	if string(got) != content {
		t.Errorf("Cat = %q, want %q", got, content)
	}

	gotHash, err := client.Add(context.Background(), []byte(content))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if gotHash != hash {
		t.Errorf("Add hash = %q, want %q", gotHash, hash)
	}
}

func TestIPFSClientCatNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewIPFSClient(srv.URL)
	_, err := client.Cat(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing hash")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want it to mention not found", err)
	}
}
