package cutlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"otrpipe/internal/logging"
	"otrpipe/internal/services"
)

const candidateXML = `<?xml version="1.0" encoding="UTF-8"?>
<cutlists>
  <cutlist>
    <id>1</id>
    <rating>3.5</rating>
    <ratingbyauthor>2</ratingbyauthor>
    <withframes>1</withframes>
    <errors>0</errors>
  </cutlist>
  <cutlist>
    <id>2</id>
    <rating></rating>
    <ratingbyauthor>4</ratingbyauthor>
    <withframes>0</withframes>
    <errors></errors>
  </cutlist>
  <cutlist>
    <id>3</id>
    <rating>5</rating>
    <ratingbyauthor>5</ratingbyauthor>
    <withframes>1</withframes>
    <errors>2</errors>
  </cutlist>
</cutlists>
`

func TestQueryParsesAndFiltersCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getxml.php" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("name"); got != "Show_26.03.14_20-15_ard_90_TVOON_DE.mpg.avi" {
			t.Errorf("name = %q", got)
		}
		io.WriteString(w, candidateXML)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, logging.NewNop())
	candidates, err := c.Query(context.Background(), "Show_26.03.14_20-15_ard_90_TVOON_DE.mpg.avi")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2 (the broken one skipped): %+v", len(candidates), candidates)
	}
	if candidates[0].ID != 1 || candidates[0].Rating != 3.5 || !candidates[0].WithFrames {
		t.Fatalf("candidate 0 = %+v", candidates[0])
	}
	// Unrated list falls back to the author's rating.
	if candidates[1].ID != 2 || candidates[1].Rating != 4 || candidates[1].WithFrames {
		t.Fatalf("candidate 1 = %+v", candidates[1])
	}
}

func TestQueryEmptyBodyMeansNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	candidates, err := NewClient(srv.URL, logging.NewNop()).Query(context.Background(), "x.avi")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if candidates != nil {
		t.Fatalf("expected no candidates, got %+v", candidates)
	}
}

func TestQueryServerErrorIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, logging.NewNop()).Query(context.Background(), "x.avi"); !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestFetchParsesList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getfile.php" || r.URL.Query().Get("id") != "4242" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		io.WriteString(w, timeOnlyDocument)
	}))
	defer srv.Close()

	list, err := NewClient(srv.URL, logging.NewNop()).Fetch(context.Background(), 4242)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if list.ID != 4242 || len(list.Entries) != 2 {
		t.Fatalf("list = %+v", list)
	}
}

func TestFetchUnknownID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "Not found.")
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, logging.NewNop()).Fetch(context.Background(), 1)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestSubmitUploadsDocument(t *testing.T) {
	document := []byte("[General]\nNoOfCuts=1\n\n[Cut0]\nStart=1\nDuration=2\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/token123/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("multipart: %v", err)
			return
		}
		file, header, err := r.FormFile("userfile[]")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		if !strings.HasSuffix(header.Filename, ".cutlist") {
			t.Errorf("upload filename = %q", header.Filename)
		}
		body, _ := io.ReadAll(file)
		if string(body) != string(document) {
			t.Errorf("uploaded document differs")
		}
		fmt.Fprint(w, "ID=987, lines: 8")
	}))
	defer srv.Close()

	id, err := NewClient(srv.URL, logging.NewNop()).Submit(context.Background(), "x.avi", document, "token123")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id != 987 {
		t.Fatalf("id = %d, want 987", id)
	}
}

func TestSubmitRejectionIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, logging.NewNop()).Submit(context.Background(), "x.avi", []byte("doc"), "nope")
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}
