package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/oukeidos/panetrans/internal/backend"
	"github.com/oukeidos/panetrans/internal/config"
	"github.com/oukeidos/panetrans/internal/intake"
	"github.com/oukeidos/panetrans/internal/models"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func withBackend(t *testing.T, mock *backend.MockBackend) func() {
	t.Helper()
	prev := newBackend
	newBackend = func(config.Config) backend.Backend { return mock }
	return func() { newBackend = prev }
}

// echoBackend parses every upload into two paragraphs and translates by
// upper-casing.
func echoBackend() *backend.MockBackend {
	return &backend.MockBackend{
		UploadFunc: func(_ context.Context, f intake.File) (*backend.UploadResponse, error) {
			return &backend.UploadResponse{
				Success: true,
				Content: []models.ContentItem{{Text: "first " + f.Name()}, {Text: "second " + f.Name()}},
			}, nil
		},
		TranslateFunc: func(_ context.Context, req backend.TranslateRequest) (*backend.TranslateResponse, error) {
			out := make([]models.TranslatedItem, len(req.Content))
			for i, it := range req.Content {
				out[i] = models.TranslatedItem{Text: it.Text, Translation: strings.ToUpper(it.Text)}
			}
			return &backend.TranslateResponse{Success: true, TranslatedContent: out}, nil
		},
		TranslateSingleFunc: func(_ context.Context, req backend.SingleRequest) (string, error) {
			return "again " + req.Text, nil
		},
		TranslateImageFunc: func(context.Context, backend.ImageRequest) (string, error) {
			return "whole image text", nil
		},
		ExportFunc: func(_ context.Context, req backend.ExportRequest) (*backend.ExportFile, error) {
			return &backend.ExportFile{Data: []byte("exported " + string(req.Format))}, nil
		},
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      []string
		want    []models.ExportFormat
		wantErr bool
	}{
		{in: nil, want: nil},
		{in: []string{"txt,docx"}, want: []models.ExportFormat{models.FormatTXT, models.FormatDOCX}},
		{in: []string{"DOCX", "docx", " "}, want: []models.ExportFormat{models.FormatDOCX}},
		{in: []string{"pdf"}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseFormats(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseFormats(%v) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseFormats(%v): %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("parseFormats(%v) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseFormats(%v) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestInputFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := inputFiles([]string{dir}); err == nil || !strings.Contains(err.Error(), "directory") {
		t.Fatalf("expected directory error, got %v", err)
	}
	if _, err := inputFiles([]string{dir + "/missing.docx"}); err == nil {
		t.Fatalf("expected error for missing input")
	}
}

func TestOutputWidth_NonTerminal(t *testing.T) {
	if got := outputWidth(&bytes.Buffer{}); got != 160 {
		t.Fatalf("outputWidth = %d, want default", got)
	}
}
