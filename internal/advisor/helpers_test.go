package advisor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"career-backend/internal/llm"
)

type fakeCompleter struct {
	mu       sync.Mutex
	calls    int
	requests []llm.Request

	completion llm.Completion
	err        error
	block      bool
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return llm.Completion{}, ctx.Err()
	}
	if f.err != nil {
		return llm.Completion{}, f.err
	}
	return f.completion, nil
}

func (f *fakeCompleter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func replying(content string) *fakeCompleter {
	return &fakeCompleter{completion: llm.Completion{Content: content, Model: "test-model"}}
}

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return string(data)
}

func validProfile() Profile {
	return Profile{Skills: "JavaScript, React, Node.js", TargetRole: "Full-stack engineer"}
}
