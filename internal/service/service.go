package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pathscategories/resolver/internal/category"
	"pathscategories/resolver/internal/client"
	"pathscategories/resolver/internal/domain"
	"pathscategories/resolver/internal/queue"
	"pathscategories/resolver/internal/repository"
	"pathscategories/resolver/internal/state"

	log "github.com/sirupsen/logrus"
)

// Snapshot is one fully built view of a fetched record set. It is never modified once installed.
type Snapshot struct {
	Generation uint64
	Records    []domain.CategoryRecord
	Forest     []*domain.CategoryNode
	Options    []domain.FlatEntry
	BuildErr   error // records left out of Forest, if any
	LoadedAt   time.Time
}

type SelectRequest struct {
	ItemSlug   string
	FieldName  string
	FieldType  string
	CategoryID domain.CategoryID
}

type Service struct {
	client          client.CategoryClient
	notifier        SelectionNotifier
	fields          state.FieldStore
	queue           queue.Queue
	repository      repository.SelectionRepository
	groupName       string
	minIdleTime     time.Duration
	refreshInterval time.Duration
	retryDelay      time.Duration // pause after a failed queue read

	generation atomic.Uint64
	mu         sync.RWMutex
	snapshot   *Snapshot
}

func NewService(
	client client.CategoryClient,
	notifier SelectionNotifier,
	fields state.FieldStore,
	queue queue.Queue,
	repository repository.SelectionRepository,
	groupName string,
	minIdleTime int,
	refreshInterval int,
) *Service {
	return &Service{
		client:          client,
		notifier:        notifier,
		fields:          fields,
		queue:           queue,
		repository:      repository,
		groupName:       groupName,
		minIdleTime:     time.Duration(minIdleTime) * time.Second,
		refreshInterval: time.Duration(refreshInterval) * time.Second,
		retryDelay:      time.Second,
		snapshot: &Snapshot{
			Records: []domain.CategoryRecord{},
			Forest:  []*domain.CategoryNode{},
			Options: []domain.FlatEntry{},
		},
	}
}

// Snapshot returns the currently installed snapshot. Before the first successful refresh it is empty.
func (s *Service) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Service) Tree() []*domain.CategoryNode {
	return s.Snapshot().Forest
}

func (s *Service) Options() []domain.FlatEntry {
	return s.Snapshot().Options
}

// Refresh fetches the record set and rebuilds the tree. Refreshes may overlap; a result is installed only
// if no refresh started after it has been installed already.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	gen := s.generation.Add(1)

	records, err := s.client.FetchCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh categories: %w", err)
	}

	forest, buildErr := category.BuildTree(records)
	var be *category.BuildError
	if errors.As(buildErr, &be) {
		for _, rec := range be.Records {
			log.Warnf("⚠️ Category left out of tree: %v", rec)
		}
	}

	snap := &Snapshot{
		Generation: gen,
		Records:    records,
		Forest:     forest,
		Options:    category.Flatten(forest),
		BuildErr:   buildErr,
		LoadedAt:   time.Now(),
	}

	if !s.install(snap) {
		log.Debugf("Discarding stale category rebuild %d", gen)
		return s.Snapshot(), nil
	}

	log.Infof("🌳 Category tree rebuilt: %d records, %d roots, %d options (generation %d)",
		len(records), len(forest), len(snap.Options), gen)
	return snap, nil
}

func (s *Service) install(snap *Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Generation <= s.snapshot.Generation {
		return false
	}
	s.snapshot = snap
	return true
}

// Run refreshes once and then on every refresh interval until ctx is done. Fetch failures keep the
// previous snapshot.
func (s *Service) Run(ctx context.Context) error {
	if _, err := s.Refresh(ctx); err != nil {
		log.Errorf("❌ Initial category load failed: %v", err)
	}

	if s.refreshInterval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				log.Errorf("❌ Category refresh failed: %v", err)
			}
		}
	}
}

func (s *Service) Breadcrumbs(id domain.CategoryID) ([]domain.Breadcrumb, error) {
	return category.ResolveBreadcrumbs(s.Snapshot().Records, id)
}

// Select resolves the selection against the current snapshot and hands the serialized payload to the
// notifier.
func (s *Service) Select(ctx context.Context, req SelectRequest) (domain.SelectionPayload, string, error) {
	payload, err := category.NewSelection(s.Snapshot().Records, req.CategoryID, req.ItemSlug)
	if err != nil {
		return domain.SelectionPayload{}, "", err
	}

	raw, err := category.EncodeSelection(payload)
	if err != nil {
		return domain.SelectionPayload{}, "", err
	}

	if err := s.notifier.OnSelectionChange(ctx, req.ItemSlug, req.FieldName, raw, req.FieldType); err != nil {
		return domain.SelectionPayload{}, "", fmt.Errorf("failed to notify selection change: %w", err)
	}

	log.Infof("📌 Item %s field %s set to category %d (%s)", req.ItemSlug, req.FieldName, payload.CategoryID, payload.Path)
	return payload, raw, nil
}

// CurrentSelection returns the prior selection of a field, if any. The live field value wins over the
// persisted one, which is only read when the field is empty. A value that does not parse counts as no
// selection.
func (s *Service) CurrentSelection(ctx context.Context, itemSlug, fieldName string) (domain.SelectionPayload, bool, error) {
	raw, err := s.fields.GetFieldValue(ctx, itemSlug, fieldName)
	if err != nil {
		return domain.SelectionPayload{}, false, err
	}

	if raw != "" {
		payload, ok := category.ParseStoredValue(raw)
		if !ok {
			log.Debugf("Ignoring unparseable value of field %s on item %s", fieldName, itemSlug)
		}
		return payload, ok, nil
	}

	stored, err := s.repository.GetSelection(ctx, itemSlug, fieldName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.SelectionPayload{}, false, nil
		}
		return domain.SelectionPayload{}, false, err
	}
	return *stored, true, nil
}

// RenameItem moves a field value to the item's new slug and recomputes its path for that slug. The old
// slug's field value and persisted row are removed.
func (s *Service) RenameItem(ctx context.Context, oldSlug, newSlug, fieldName, fieldType string) (domain.SelectionPayload, bool, error) {
	payload, ok, err := s.CurrentSelection(ctx, oldSlug, fieldName)
	if err != nil || !ok {
		return domain.SelectionPayload{}, ok, err
	}

	rebased := category.Rebase(payload, newSlug)
	raw, err := category.EncodeSelection(rebased)
	if err != nil {
		return domain.SelectionPayload{}, false, err
	}

	if err := s.notifier.OnSelectionChange(ctx, newSlug, fieldName, raw, fieldType); err != nil {
		return domain.SelectionPayload{}, false, fmt.Errorf("failed to notify selection change: %w", err)
	}

	if oldSlug != newSlug {
		if err := s.fields.DeleteFieldValue(ctx, oldSlug, fieldName); err != nil {
			return domain.SelectionPayload{}, false, err
		}
		if err := s.repository.DeleteSelection(ctx, oldSlug, fieldName); err != nil {
			return domain.SelectionPayload{}, false, err
		}
	}

	log.Infof("✏️ Item %s renamed to %s, field %s path now %s", oldSlug, newSlug, fieldName, rebased.Path)
	return rebased, true, nil
}
