package task

// SelectionChangedTask carries one onSelectionChange notification to the persistence workers
type SelectionChangedTask struct {
	ItemSlug  string `json:"item_slug"`  // Slug of the item being categorized
	FieldName string `json:"field_name"` // Host field the value belongs to
	FieldType string `json:"field_type"` // Host attribute type, passed through untouched
	Value     string `json:"value"`      // Serialized selection payload
}

func (t *SelectionChangedTask) TaskType() string {
	return "SelectionChangedTask"
}

func (t *SelectionChangedTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
