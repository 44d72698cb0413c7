package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"dynamocards-backend/internal/concepts"
	"dynamocards-backend/internal/transcript"
	"dynamocards-backend/models"
)

type memoryStore struct {
	mu        sync.Mutex
	analyses  map[string]models.Analysis
	createErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{analyses: map[string]models.Analysis{}}
}

func (m *memoryStore) Create(_ context.Context, a *models.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.analyses[a.ID] = *a
	return nil
}

func (m *memoryStore) Update(_ context.Context, a *models.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.analyses[a.ID]; !ok {
		return ErrNotFound
	}
	m.analyses[a.ID] = *a
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (*models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.analyses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *memoryStore) Recent(_ context.Context, limit int) ([]models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Analysis, 0, len(m.analyses))
	for _, a := range m.analyses {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, a := range m.analyses {
		if a.CreatedAt.Before(cutoff) {
			delete(m.analyses, id)
			n++
		}
	}
	return n, nil
}

type stubLoader struct {
	chunks []transcript.Chunk
	err    error
	calls  int
}

func (l *stubLoader) Load(_ context.Context, _ string) ([]transcript.Chunk, error) {
	l.calls++
	return l.chunks, l.err
}

type stubExtractor struct {
	result *concepts.Result
	err    error
	sample *int
}

func (e *stubExtractor) Extract(_ context.Context, _ []transcript.Chunk, sampleSize *int) (*concepts.Result, error) {
	e.sample = sampleSize
	return e.result, e.err
}

type recordingQueue struct {
	ids []string
	err error
}

func (q *recordingQueue) EnqueueAnalysis(_ context.Context, id string) error {
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, id)
	return nil
}

// echoGenerator answers every prompt with a fixed reply and keeps the prompts.
type echoGenerator struct {
	reply   string
	prompts []string
}

func (g *echoGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, nil
}

func sampleChunks(n int) []transcript.Chunk {
	meta := transcript.Metadata{VideoID: "dQw4w9WgXcQ", Author: "Rick", Title: "Lecture", LengthSeconds: 212}
	chunks := make([]transcript.Chunk, n)
	for i := range chunks {
		chunks[i] = transcript.Chunk{Index: i, Text: "chunk text", Source: meta}
	}
	return chunks
}

func sampleResult() *concepts.Result {
	return &concepts.Result{
		Plan:     concepts.GroupPlan{Chunks: 2, SampleSize: 1, ChunksPerGroup: 2, GroupCount: 1, Derived: true},
		Concepts: []concepts.Record{{Term: "Photosynthesis", Definition: "Light to sugar"}},
		Usage:    concepts.Usage{InputChars: 1000, OutputChars: 100, TotalCost: 0.0001625},
	}
}
