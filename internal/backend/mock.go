package backend

import (
	"context"
	"sync"

	"github.com/oukeidos/panetrans/internal/intake"
)

// MockBackend for testing. Each Func, when set, overrides the canned
// response for that call; every call is recorded.
type MockBackend struct {
	mu sync.Mutex

	UploadFunc          func(ctx context.Context, f intake.File) (*UploadResponse, error)
	TranslateFunc       func(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
	TranslateSingleFunc func(ctx context.Context, req SingleRequest) (string, error)
	TranslateImageFunc  func(ctx context.Context, req ImageRequest) (string, error)
	ExportFunc          func(ctx context.Context, req ExportRequest) (*ExportFile, error)

	Uploads        []string
	TranslateCalls []TranslateRequest
	SingleCalls    []SingleRequest
	ImageCalls     []ImageRequest
	ExportCalls    []ExportRequest
}

func (m *MockBackend) Upload(ctx context.Context, f intake.File) (*UploadResponse, error) {
	m.mu.Lock()
	m.Uploads = append(m.Uploads, f.Name())
	fn := m.UploadFunc
	m.mu.Unlock()
	if fn == nil {
		return &UploadResponse{Success: true}, nil
	}
	return fn(ctx, f)
}

func (m *MockBackend) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	m.mu.Lock()
	m.TranslateCalls = append(m.TranslateCalls, req)
	fn := m.TranslateFunc
	m.mu.Unlock()
	if fn == nil {
		return &TranslateResponse{Success: true}, nil
	}
	return fn(ctx, req)
}

func (m *MockBackend) TranslateSingle(ctx context.Context, req SingleRequest) (string, error) {
	m.mu.Lock()
	m.SingleCalls = append(m.SingleCalls, req)
	fn := m.TranslateSingleFunc
	m.mu.Unlock()
	if fn == nil {
		return "", nil
	}
	return fn(ctx, req)
}

func (m *MockBackend) TranslateImage(ctx context.Context, req ImageRequest) (string, error) {
	m.mu.Lock()
	m.ImageCalls = append(m.ImageCalls, req)
	fn := m.TranslateImageFunc
	m.mu.Unlock()
	if fn == nil {
		return "", nil
	}
	return fn(ctx, req)
}

func (m *MockBackend) Export(ctx context.Context, req ExportRequest) (*ExportFile, error) {
	m.mu.Lock()
	m.ExportCalls = append(m.ExportCalls, req)
	fn := m.ExportFunc
	m.mu.Unlock()
	if fn == nil {
		return &ExportFile{}, nil
	}
	return fn(ctx, req)
}

// Calls returns the total number of requests issued.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Uploads) + len(m.TranslateCalls) + len(m.SingleCalls) + len(m.ImageCalls) + len(m.ExportCalls)
}
