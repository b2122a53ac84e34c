// internal/engine/mocks_test.go
package engine

import (
	"context"
	"errors"
	"sync/atomic"

	"ingrid-daylog/internal/image"
	"ingrid-daylog/internal/storage"
)

// --- MockStore ---
// Compile-time check to ensure MockStore implements storage.Store
var _ storage.Store = (*MockStore)(nil)

// MockStore is a mock implementation of storage.Store.
type MockStore struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string) error
	DeleteFunc func(ctx context.Context, key string) (bool, error)

	GetFuncCallCount    int32
	SetFuncCallCount    int32
	DeleteFuncCallCount int32
}

func (m *MockStore) Get(ctx context.Context, key string) (string, error) {
	atomic.AddInt32(&m.GetFuncCallCount, 1)
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", storage.ErrNotFound
}

func (m *MockStore) Set(ctx context.Context, key, value string) error {
	atomic.AddInt32(&m.SetFuncCallCount, 1)
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	return nil
}

func (m *MockStore) Delete(ctx context.Context, key string) (bool, error) {
	atomic.AddInt32(&m.DeleteFuncCallCount, 1)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return true, nil
}

func (m *MockStore) Close() error { return nil }

// --- MockCompressor ---
var _ image.Compressor = (*MockCompressor)(nil)

// MockCompressor is a mock implementation of image.Compressor.
type MockCompressor struct {
	CompressFunc func(ctx context.Context, srcURI string) (*image.Compressed, error)
	ReencodeFunc func(ctx context.Context, uri string) (string, error)

	CompressFuncCallCount int32
	ReencodeFuncCallCount int32
}

func (m *MockCompressor) Compress(ctx context.Context, srcURI string) (*image.Compressed, error) {
	atomic.AddInt32(&m.CompressFuncCallCount, 1)
	if m.CompressFunc != nil {
		return m.CompressFunc(ctx, srcURI)
	}
	return &image.Compressed{URI: srcURI, Base64: "cGl4ZWxz"}, nil
}

func (m *MockCompressor) Reencode(ctx context.Context, uri string) (string, error) {
	atomic.AddInt32(&m.ReencodeFuncCallCount, 1)
	if m.ReencodeFunc != nil {
		return m.ReencodeFunc(ctx, uri)
	}
	return "cGl4ZWxz", nil
}

// --- MockSession ---
var _ ChatSession = (*MockSession)(nil)

// MockSession is a mock implementation of ChatSession.
type MockSession struct {
	SendTextFunc  func(ctx context.Context, text, templateKey string) string
	SendImageFunc func(ctx context.Context, imageBase64, localTime, templateKey string) string

	SendTextFuncCallCount  int32
	SendImageFuncCallCount int32
}

func (m *MockSession) SendText(ctx context.Context, text, templateKey string) string {
	atomic.AddInt32(&m.SendTextFuncCallCount, 1)
	if m.SendTextFunc != nil {
		return m.SendTextFunc(ctx, text, templateKey)
	}
	return "mock report"
}

func (m *MockSession) SendImage(ctx context.Context, imageBase64, localTime, templateKey string) string {
	atomic.AddInt32(&m.SendImageFuncCallCount, 1)
	if m.SendImageFunc != nil {
		return m.SendImageFunc(ctx, imageBase64, localTime, templateKey)
	}
	return "mock analysis"
}

var errMockStore = errors.New("store unavailable")
