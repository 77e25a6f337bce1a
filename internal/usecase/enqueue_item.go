// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/loopgate/loopgate/internal/domain"
)

// EnqueueItemInput contains the parameters for enqueuing one source item.
// Fields are ordered to minimize memory padding.
type EnqueueItemInput struct {
	Ref           string // Opaque producer reference (required, unique)
	Type          string // Task-type label for effort estimation (optional)
	Title         string // Human-readable title (required)
	MaxIterations int    // Iteration ceiling (0 = config default at claim time)
}

// EnqueueItemOutput contains the result of enqueuing a source item.
type EnqueueItemOutput struct {
	Ref string
}

// EnqueueItem is the use case for adding a pending unit of work.
type EnqueueItem struct {
	queue  domain.SourceQueue
	clock  domain.Clock
	logger domain.Logger
}

// NewEnqueueItem creates a new EnqueueItem use case.
func NewEnqueueItem(queue domain.SourceQueue, clock domain.Clock, logger domain.Logger) *EnqueueItem {
	return &EnqueueItem{queue: queue, clock: clock, logger: logger}
}

// Execute enqueues one source item.
func (uc *EnqueueItem) Execute(_ context.Context, in EnqueueItemInput) (*EnqueueItemOutput, error) {
	if in.Ref == "" {
		return nil, fmt.Errorf("%w: source ref is required", domain.ErrValidation)
	}
	if in.Title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if in.MaxIterations < 0 {
		return nil, fmt.Errorf("%w: max_iterations must not be negative", domain.ErrValidation)
	}

	item := &domain.SourceItem{
		Ref:           in.Ref,
		Type:          in.Type,
		Title:         in.Title,
		MaxIterations: in.MaxIterations,
		Created:       uc.clock.Now(),
	}
	if err := uc.queue.Enqueue(item); err != nil {
		return nil, fmt.Errorf("enqueue source item: %w", err)
	}

	uc.logger.Info("", "queue", fmt.Sprintf("enqueued %q (%s)", in.Ref, in.Title))
	return &EnqueueItemOutput{Ref: in.Ref}, nil
}

// itemDoc is the YAML document shape accepted by ExecuteFromYAML.
type itemDoc struct {
	Ref           string `yaml:"ref"`
	Type          string `yaml:"type"`
	Title         string `yaml:"title"`
	MaxIterations int    `yaml:"max_iterations"`
}

// ExecuteFromYAML enqueues every document in a multi-document YAML stream.
// Validation failures abort before any item is enqueued.
func (uc *EnqueueItem) ExecuteFromYAML(ctx context.Context, r io.Reader) ([]EnqueueItemOutput, error) {
	dec := yaml.NewDecoder(r)
	var docs []itemDoc
	for {
		var doc itemDoc
		if err := dec.Decode(&doc); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%w: parse items file: %v", domain.ErrValidation, err)
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: items file contains no documents", domain.ErrValidation)
	}

	for i, doc := range docs {
		if doc.Ref == "" {
			return nil, fmt.Errorf("%w: document %d: source ref is required", domain.ErrValidation, i)
		}
		if doc.Title == "" {
			return nil, fmt.Errorf("%w: document %d: title is required", domain.ErrValidation, i)
		}
	}

	var outs []EnqueueItemOutput
	for _, doc := range docs {
		out, err := uc.Execute(ctx, EnqueueItemInput(doc))
		if err != nil {
			return outs, err
		}
		outs = append(outs, *out)
	}
	return outs, nil
}
