package service

import (
	"context"
	"fmt"

	"pathscategories/resolver/internal/domain/task"
	"pathscategories/resolver/internal/queue"
	"pathscategories/resolver/internal/state"
)

// SelectionNotifier receives every selection made through the service, already serialized
type SelectionNotifier interface {
	OnSelectionChange(ctx context.Context, itemSlug, fieldName, serializedPayload, fieldType string) error
}

type hostNotifier struct {
	fields state.FieldStore
	queue  queue.Queue
}

// NewHostNotifier writes the value into the field store and queues it for durable persistence
func NewHostNotifier(fields state.FieldStore, queue queue.Queue) SelectionNotifier {
	return &hostNotifier{
		fields: fields,
		queue:  queue,
	}
}

func (n *hostNotifier) OnSelectionChange(ctx context.Context, itemSlug, fieldName, serializedPayload, fieldType string) error {
	if err := n.fields.SetFieldValue(ctx, itemSlug, fieldName, serializedPayload); err != nil {
		return err
	}

	_, err := n.queue.AddTask(ctx, &task.SelectionChangedTask{
		ItemSlug:  itemSlug,
		FieldName: fieldName,
		FieldType: fieldType,
		Value:     serializedPayload,
	})
	if err != nil {
		return fmt.Errorf("failed to queue selection change: %w", err)
	}
	return nil
}
