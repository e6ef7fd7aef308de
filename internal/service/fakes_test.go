package service

import (
	"context"
	"sync"
	"time"

	"pathscategories/resolver/internal/domain"
	"pathscategories/resolver/internal/domain/task"
	"pathscategories/resolver/internal/repository"

	"github.com/redis/go-redis/v9"
)

type fetchResult struct {
	records []domain.CategoryRecord
	err     error
	release chan struct{} // if set, the fetch blocks until closed
}

type fakeClient struct {
	mu      sync.Mutex
	results []fetchResult
	calls   chan int
}

func (c *fakeClient) FetchCategories(ctx context.Context) ([]domain.CategoryRecord, error) {
	c.mu.Lock()
	res := c.results[0]
	if len(c.results) > 1 {
		c.results = c.results[1:]
	}
	c.mu.Unlock()

	if c.calls != nil {
		c.calls <- len(res.records)
	}
	if res.release != nil {
		<-res.release
	}
	return res.records, res.err
}

type fakeFields struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newFakeFields() *fakeFields {
	return &fakeFields{values: make(map[string]string)}
}

func (f *fakeFields) GetFieldValue(ctx context.Context, itemSlug, fieldName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[itemSlug+":"+fieldName], f.err
}

func (f *fakeFields) SetFieldValue(ctx context.Context, itemSlug, fieldName, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[itemSlug+":"+fieldName] = value
	return f.err
}

func (f *fakeFields) DeleteFieldValue(ctx context.Context, itemSlug, fieldName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, itemSlug+":"+fieldName)
	return f.err
}

type fakeQueue struct {
	mu       sync.Mutex
	tasks    []task.Task
	acked    []string
	getErr   error
	getCalls chan struct{}
}

func (q *fakeQueue) AddTask(ctx context.Context, t task.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
	return "1-0", nil
}

func (q *fakeQueue) GetTask(ctx context.Context, group, consumer, stream string) (*redis.XMessage, error) {
	if q.getCalls != nil {
		select {
		case q.getCalls <- struct{}{}:
		default:
		}
	}
	return nil, q.getErr
}

func (q *fakeQueue) AckTask(ctx context.Context, stream, group, msgID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, msgID)
	return nil
}

func (q *fakeQueue) CreateGroup(ctx context.Context, stream, group string) error {
	return nil
}

func (q *fakeQueue) AutoClaim(ctx context.Context, group, consumer, stream string, minIdleTime time.Duration) ([]redis.XMessage, error) {
	return nil, nil
}

func (q *fakeQueue) EnsureStreamsExist(ctx context.Context) error {
	return nil
}

type fakeRepository struct {
	mu    sync.Mutex
	saved map[string]domain.SelectionPayload
	err   error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{saved: make(map[string]domain.SelectionPayload)}
}

func (r *fakeRepository) SaveSelection(ctx context.Context, itemSlug, fieldName string, payload domain.SelectionPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved[itemSlug+":"+fieldName] = payload
	return nil
}

func (r *fakeRepository) GetSelection(ctx context.Context, itemSlug, fieldName string) (*domain.SelectionPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, ok := r.saved[itemSlug+":"+fieldName]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &payload, nil
}

func (r *fakeRepository) DeleteSelection(ctx context.Context, itemSlug, fieldName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.saved, itemSlug+":"+fieldName)
	return nil
}

func clothingRecords() []domain.CategoryRecord {
	return []domain.CategoryRecord{
		{ID: 1, Name: "Clothing", Slug: "clothing"},
		{ID: 2, Name: "Shoes", Slug: "shoes", Parent: &domain.ParentRef{ID: 1}},
	}
}

type fixture struct {
	client     *fakeClient
	fields     *fakeFields
	queue      *fakeQueue
	repository *fakeRepository
	service    *Service
}

func newFixture(results ...fetchResult) *fixture {
	f := &fixture{
		client:     &fakeClient{results: results},
		fields:     newFakeFields(),
		queue:      &fakeQueue{},
		repository: newFakeRepository(),
	}
	f.service = NewService(
		f.client,
		NewHostNotifier(f.fields, f.queue),
		f.fields,
		f.queue,
		f.repository,
		"test-group",
		0,
		0,
	)
	return f
}
