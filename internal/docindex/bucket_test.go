package docindex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newBucketServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		host := "http://" + r.Host
		fmt.Fprintf(w, `{"documents": [
			{"filename": "faq.md", "url": "%s/faq.md"},
			{"filename": "programa.txt", "url": "%s/programa.txt"},
			{"filename": "foto.png", "url": "%s/foto.png"},
			{"filename": "roto.md", "url": "%s/roto.md"}
		]}`, host, host, host, host)
	})
	mux.HandleFunc("/faq.md", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "preguntas frecuentes")
	})
	mux.HandleFunc("/programa.txt", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "programa de gobierno")
	})
	mux.HandleFunc("/roto.md", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestBucketSource_LoadDocuments(t *testing.T) {
	srv := newBucketServer(t)
	src := NewBucketSource(5*time.Second, zap.NewNop())

	docs, err := src.LoadDocuments(context.Background(), srv.URL+"/manifest.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// foto.png is not a text document; roto.md fails to download. Both are
	// skipped without aborting the load.
	if len(docs) != 2 {
		t.Fatalf("loaded %d documents, want 2: %v", len(docs), docs)
	}
	if docs[0].Filename != "faq.md" || docs[0].Content != "preguntas frecuentes" {
		t.Errorf("first doc = %+v", docs[0])
	}
	if docs[1].Filename != "programa.txt" || docs[1].Content != "programa de gobierno" {
		t.Errorf("second doc = %+v", docs[1])
	}
}

func TestBucketSource_BareArrayManifest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"filename": "a.md", "url": "http://%s/a.md"}]`, r.Host)
	})
	mux.HandleFunc("/a.md", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "contenido")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewBucketSource(5*time.Second, zap.NewNop())
	docs, err := src.LoadDocuments(context.Background(), srv.URL+"/list")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 1 || docs[0].Content != "contenido" {
		t.Errorf("docs = %v", docs)
	}
}

func TestBucketSource_ManifestUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewBucketSource(5*time.Second, zap.NewNop())
	if _, err := src.LoadDocuments(context.Background(), srv.URL+"/manifest.json"); err == nil {
		t.Fatal("expected manifest error")
	}
}

func TestIsTextDocument(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"faq.md", true},
		{"PROGRAMA.TXT", true},
		{"foto.png", false},
		{"informe.pdf", false},
	}
	for _, tt := range tests {
		if got := isTextDocument(tt.filename); got != tt.want {
			t.Errorf("isTextDocument(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}
