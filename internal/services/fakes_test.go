package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/cv-screener/internal/models"
	"alfredoptarigan/cv-screener/internal/repositories"
)

// stubEmbedder returns vectors[text] when present, and fallback otherwise.
type stubEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	err      error
	calls    []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls = append(s.calls, text)
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return s.fallback, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type stubIndex struct {
	neighbors  []Neighbor
	rows       int
	err        error
	replaceErr error
	calls      int
}

func (s *stubIndex) Len(context.Context) (int, error) {
	return s.rows, s.err
}

func (s *stubIndex) Search(_ context.Context, _ []float32, _ int) ([]Neighbor, error) {
	s.calls++
	return s.neighbors, s.err
}

func (s *stubIndex) Replace(_ context.Context, vectors [][]float32) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.rows = len(vectors)
	return nil
}

type stubMapping struct {
	roles   map[string]string
	err     error
	saveErr error
}

func (s *stubMapping) Load() (map[string]string, error) { return s.roles, s.err }
func (s *stubMapping) Save([]string) error              { return s.saveErr }

type stubLLM struct {
	output  string
	err     error
	pingErr error
	prompts []string
	opts    []GenerationOptions
}

func (s *stubLLM) GenerateText(_ context.Context, prompt string, opts GenerationOptions) (string, error) {
	s.prompts = append(s.prompts, prompt)
	s.opts = append(s.opts, opts)
	return s.output, s.err
}

func (s *stubLLM) Ping(context.Context) error { return s.pingErr }

type stubRetriever struct {
	match *RoleMatch
	err   error
	calls int
}

func (s *stubRetriever) RetrieveRole(context.Context, string) (*RoleMatch, error) {
	s.calls++
	return s.match, s.err
}

type stubGenerator struct {
	output    string
	err       error
	available bool
	prompts   []string
}

func (s *stubGenerator) GenerateFeedback(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.output, s.err
}

func (s *stubGenerator) Available() bool { return s.available }

type memoryUploadRepo struct {
	mu        sync.Mutex
	uploads   map[uuid.UUID]*models.Upload
	createErr error
}

func newMemoryUploadRepo() *memoryUploadRepo {
	return &memoryUploadRepo{uploads: make(map[uuid.UUID]*models.Upload)}
}

func (r *memoryUploadRepo) Create(upload *models.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := *upload
	r.uploads[upload.ID] = &cp
	return nil
}

func (r *memoryUploadRepo) FindByID(id uuid.UUID) (*models.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	upload, ok := r.uploads[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *upload
	return &cp, nil
}

func (r *memoryUploadRepo) FindExpired(before time.Time, limit int) ([]models.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []models.Upload
	for _, upload := range r.uploads {
		if upload.CreatedAt.Before(before) && len(expired) < limit {
			expired = append(expired, *upload)
		}
	}
	return expired, nil
}

func (r *memoryUploadRepo) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.uploads, id)
	return nil
}

func (r *memoryUploadRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.uploads)
}

type memoryScreeningRepo struct {
	mu         sync.Mutex
	screenings map[uuid.UUID]*models.Screening
	history    []models.ScreeningStatus
}

func newMemoryScreeningRepo() *memoryScreeningRepo {
	return &memoryScreeningRepo{screenings: make(map[uuid.UUID]*models.Screening)}
}

func (r *memoryScreeningRepo) Create(screening *models.Screening) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *screening
	r.screenings[screening.ID] = &cp
	r.history = append(r.history, screening.Status)
	return nil
}

func (r *memoryScreeningRepo) FindByID(id uuid.UUID) (*models.Screening, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	screening, ok := r.screenings[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *screening
	return &cp, nil
}

func (r *memoryScreeningRepo) UpdateStatus(id uuid.UUID, status models.ScreeningStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	screening, ok := r.screenings[id]
	if !ok {
		return repositories.ErrNotFound
	}
	screening.Status = status
	r.history = append(r.history, status)
	return nil
}

func (r *memoryScreeningRepo) UpdateResult(id uuid.UUID, data *repositories.ScreeningUpdateData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	screening, ok := r.screenings[id]
	if !ok {
		return repositories.ErrNotFound
	}
	screening.Status = models.StatusCompleted
	screening.RoleMatched = data.RoleMatched
	screening.Similarity = data.Similarity
	if data.Fallback != nil {
		screening.Fallback = *data.Fallback
	}
	screening.TotalTime = data.TotalTime
	r.history = append(r.history, models.StatusCompleted)
	return nil
}

func (r *memoryScreeningRepo) UpdateError(id uuid.UUID, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	screening, ok := r.screenings[id]
	if !ok {
		return repositories.ErrNotFound
	}
	screening.Status = models.StatusFailed
	screening.ErrorMessage = &errorMsg
	r.history = append(r.history, models.StatusFailed)
	return nil
}
