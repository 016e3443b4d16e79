package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oukeidos/panetrans/internal/apperrors"
	"github.com/oukeidos/panetrans/internal/intake"
	"github.com/oukeidos/panetrans/internal/models"
)

func TestClient_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "paper.pdf" || string(data) != "%PDF-1.4 body" {
			t.Errorf("unexpected upload %q %q", header.Filename, data)
		}
		fmt.Fprint(w, `{"success":true,"content":[{"text":"Hello","id":"p1","tag":"p"}],"has_format":true,"html_content":"<p id=\"p1\" class=\"translatable\">Hello</p>","filename":"paper.pdf","file_type":"pdf"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", server.Client())
	resp, err := client.Upload(context.Background(), intake.MemFile("paper.pdf", []byte("%PDF-1.4 body")))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !resp.HasFormat || resp.HTMLContent == nil || len(resp.Content) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Content[0].ID != "p1" || resp.Content[0].Extra["tag"] == nil {
		t.Fatalf("content item not decoded: %+v", resp.Content[0])
	}
}

func TestClient_Translate_SendsFullRequest(t *testing.T) {
	var got map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		fmt.Fprint(w, `{"success":true,"translated_content":[{"text":"Hello","translation":"Hallo","id":"p1"}],"translated_html":null}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	resp, err := client.Translate(context.Background(), TranslateRequest{
		Content:    []models.ContentItem{{Text: "Hello", ID: "p1"}},
		TargetLang: "de",
		SourceLang: "auto",
		AIModel:    "gpt-4o",
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(resp.TranslatedContent) != 1 || resp.TranslatedContent[0].Translation != "Hallo" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	for _, key := range []string{"content", "target_lang", "source_lang", "html_content", "ai_model"} {
		if _, ok := got[key]; !ok {
			t.Errorf("request missing %q", key)
		}
	}
	if string(got["source_lang"]) != `"auto"` {
		t.Errorf("source_lang = %s", got["source_lang"])
	}
}

func TestClient_BackendErrorIsVerbatim(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"success false", http.StatusOK, `{"success":false,"error":"model quota exhausted"}`},
		{"500 with error", http.StatusInternalServerError, `{"error":"model quota exhausted"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			_, err := NewClient(server.URL, nil).TranslateImage(context.Background(), ImageRequest{ImageBase64: "AAAA"})
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !apperrors.IsBackend(err) {
				t.Fatalf("expected backend kind, got %v", err)
			}
			if got := apperrors.PublicMessage(err); got != "model quota exhausted" {
				t.Fatalf("PublicMessage() = %q", got)
			}
		})
	}
}

func TestClient_StatusWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html>bad gateway</html>")
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nil).TranslateSingle(context.Background(), SingleRequest{Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "(502)") {
		t.Fatalf("expected 502 error, got %v", err)
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nil).Translate(context.Background(), TranslateRequest{})
	kind, ok := apperrors.KindOf(err)
	if !ok || kind != apperrors.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, nil).Translate(context.Background(), TranslateRequest{})
	if !apperrors.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestClient_Export(t *testing.T) {
	var got ExportRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Disposition", `attachment; filename="report_translation.txt"`)
		fmt.Fprint(w, "Hallo\n\n")
	}))
	defer server.Close()

	file, err := NewClient(server.URL, nil).Export(context.Background(), ExportRequest{
		Content:   []models.TranslatedItem{{Paragraph: 1, Text: "Hello", Translation: "Hallo"}},
		Format:    models.FormatTXT,
		Filename:  "report",
		Bilingual: false,
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if string(file.Data) != "Hallo\n\n" || file.Filename != "report_translation.txt" {
		t.Fatalf("unexpected file: %+v", file)
	}
	if got.Format != models.FormatTXT || got.OriginalContent != nil {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestClient_ExportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"unsupported export format"}`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nil).Export(context.Background(), ExportRequest{Format: "pdf"})
	if got := apperrors.PublicMessage(err); got != "unsupported export format" {
		t.Fatalf("PublicMessage() = %q", got)
	}
}
