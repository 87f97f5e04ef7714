package content

import (
	"context"
	"errors"
	"fmt"
)

// diagnosticLevels are the difficulties each topic contributes to a
// diagnostic set: one easy and one medium item.
var diagnosticLevels = []int{1, 2}

// DiagnosticSet builds an assessment covering topics, two items per topic
// in topic order. Topics the factory has no content for are skipped.
func DiagnosticSet(ctx context.Context, f Factory, topics []string) ([]WorkItem, error) {
	var items []WorkItem
	for _, id := range topics {
		for _, d := range diagnosticLevels {
			batch, err := f.GenerateItems(ctx, id, 1, DifficultyRange{Min: d, Max: d})
			if errors.Is(err, ErrUnknownTopic) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("diagnostic items for %s: %w", id, err)
			}
			items = append(items, batch...)
		}
	}
	return items, nil
}
