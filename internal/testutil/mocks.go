// Package testutil provides shared test utilities and mocks for unit testing.
package testutil

import (
	"sync"

	"github.com/fluxbase-eu/bundlebudget/internal/budget"
)

// GraphBuilder assembles output graphs for tests
type GraphBuilder struct {
	graph budget.OutputGraph
}

// NewGraph creates an empty graph builder
func NewGraph() *GraphBuilder {
	return &GraphBuilder{}
}

// Initial adds an eagerly loaded artifact
func (b *GraphBuilder) Initial(name string, files ...File) *GraphBuilder {
	return b.artifact(name, true, files)
}

// Lazy adds an artifact loaded on demand
func (b *GraphBuilder) Lazy(name string, files ...File) *GraphBuilder {
	return b.artifact(name, false, files)
}

// ComponentStyle adds a component stylesheet
func (b *GraphBuilder) ComponentStyle(path string, size int64) *GraphBuilder {
	b.graph.ComponentStyles = append(b.graph.ComponentStyles, budget.OutputFile{
		Path: path,
		Size: size,
		Kind: budget.KindFromPath(path),
	})
	return b
}

// Build returns the assembled graph
func (b *GraphBuilder) Build() budget.OutputGraph {
	return b.graph
}

func (b *GraphBuilder) artifact(name string, initial bool, files []File) *GraphBuilder {
	a := budget.Artifact{Name: name, Initial: initial}
	for _, f := range files {
		a.Files = append(a.Files, budget.OutputFile{
			Path:    f.Path,
			Size:    f.Size,
			Kind:    budget.KindFromPath(f.Path),
			Initial: initial,
		})
	}
	b.graph.Artifacts = append(b.graph.Artifacts, a)
	return b
}

// File is a path and size pair for GraphBuilder
type File struct {
	Path string
	Size int64
}

// F is shorthand for File{path, size}
func F(path string, size int64) File {
	return File{Path: path, Size: size}
}

// ObservedSize is a size reported to a MockObserver
type ObservedSize struct {
	Budget string
	Size   budget.Size
}

// ObservedViolation is a violation reported to a MockObserver
type ObservedViolation struct {
	Budget  string
	Message budget.Message
}

// MockObserver implements budget.Observer and records every callback
type MockObserver struct {
	mu         sync.Mutex
	sizes      []ObservedSize
	violations []ObservedViolation
}

// NewMockObserver creates a new recording observer
func NewMockObserver() *MockObserver {
	return &MockObserver{}
}

func (m *MockObserver) ObserveSize(b budget.Budget, s budget.Size) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sizes = append(m.sizes, ObservedSize{Budget: b.Label(), Size: s})
}

func (m *MockObserver) ObserveViolation(b budget.Budget, msg budget.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations = append(m.violations, ObservedViolation{Budget: b.Label(), Message: msg})
}

// Sizes returns a copy of the recorded sizes
func (m *MockObserver) Sizes() []ObservedSize {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ObservedSize(nil), m.sizes...)
}

// Violations returns a copy of the recorded violations
func (m *MockObserver) Violations() []ObservedViolation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ObservedViolation(nil), m.violations...)
}

// Reset clears all recorded callbacks
func (m *MockObserver) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sizes = nil
	m.violations = nil
}
