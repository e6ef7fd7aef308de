package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pathscategories/resolver/internal/category"
	"pathscategories/resolver/internal/domain/task"
	"pathscategories/resolver/internal/queue"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var selectionStream = queue.StreamName((&task.SelectionChangedTask{}).TaskType())

// RunWorkers persists queued selection changes until ctx is done
func (s *Service) RunWorkers(ctx context.Context, numWorkers int) error {
	var wg sync.WaitGroup

	s.runWorkersForStream(ctx, &wg, numWorkers, selectionStream, "selection")

	wg.Wait()
	return nil
}

func (s *Service) runWorkersForStream(ctx context.Context, wg *sync.WaitGroup, numWorkers int, streamName, workerType string) {
	// Auto-claimer for messages left pending by dead consumers
	if s.minIdleTime > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(s.minIdleTime)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					consumer := fmt.Sprintf("autoclaimer-%s", workerType)
					claimed, err := s.queue.AutoClaim(ctx, s.groupName, consumer, streamName, s.minIdleTime)
					if err != nil {
						log.Errorf("❌ Failed to auto-claim messages for %s: %v", streamName, err)
						continue
					}
					if len(claimed) > 0 {
						log.Infof("🔄 Auto-claimed %d messages from %s stream", len(claimed), workerType)
					}
					for _, msg := range claimed {
						if err := s.processMessage(ctx, &msg); err != nil {
							log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}()
	}

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("%s-worker-%d", workerType, workerID)
			log.Infof("🚀 Starting %s worker %d as consumer %s", workerType, workerID, consumer)
			for {
				select {
				case <-ctx.Done():
					log.Infof("🛑 %s worker %d stopping", workerType, workerID)
					return
				default:
					msg, err := s.queue.GetTask(ctx, s.groupName, consumer, streamName)
					if err != nil {
						if ctx.Err() == nil {
							log.Errorf("❌ Failed to get task from %s: %v", streamName, err)
						}
						select {
						case <-ctx.Done():
						case <-time.After(s.retryDelay):
						}
						continue
					}

					if msg != nil {
						if err := s.processMessage(ctx, msg); err != nil {
							log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}(i + 1)
	}
}

func (s *Service) processMessage(ctx context.Context, msg *redis.XMessage) error {
	taskType, ok := msg.Values["task_type"].(string)
	if !ok {
		return fmt.Errorf("invalid task type in message %s", msg.ID)
	}

	taskData, ok := msg.Values["task_data"].(string)
	if !ok {
		return fmt.Errorf("invalid task data in message %s", msg.ID)
	}

	switch taskType {
	case (&task.SelectionChangedTask{}).TaskType():
		changed, err := task.UnmarshalTask[*task.SelectionChangedTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal selection task data: %w", err)
		}

		if err := s.persistSelection(ctx, changed); err != nil {
			// left pending so the auto-claimer retries it
			return err
		}

	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}

	if err := s.queue.AckTask(ctx, selectionStream, s.groupName, msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}

	return nil
}

// persistSelection stores the selection with its path rebased onto the item slug carried by the task.
// Values that do not decode are dropped, they would never succeed on retry.
func (s *Service) persistSelection(ctx context.Context, changed *task.SelectionChangedTask) error {
	payload, err := category.DecodeSelection(changed.Value)
	if err != nil {
		log.Warnf("⚠️ Dropping selection for item %s field %s: %v", changed.ItemSlug, changed.FieldName, err)
		return nil
	}

	payload = category.Rebase(payload, changed.ItemSlug)

	if err := s.repository.SaveSelection(ctx, changed.ItemSlug, changed.FieldName, payload); err != nil {
		return fmt.Errorf("failed to persist selection for item %s: %w", changed.ItemSlug, err)
	}

	log.Debugf("Persisted item %s field %s -> %s", changed.ItemSlug, changed.FieldName, payload.Path)
	return nil
}
