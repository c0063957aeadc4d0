package service

import (
	"context"

	"blizz/internal/events"
	"blizz/internal/models"
	"blizz/internal/observability"
	"blizz/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// AppreciationService applies reactions and reports the resulting tallies.
type AppreciationService struct {
	appreciations repository.AppreciationRepository
	dispatch      dispatcher
}

// AppreciationResult is returned after a reaction is applied.
type AppreciationResult struct {
	Level      models.AppreciationLevel `json:"level"`
	Counts     models.LevelCounts       `json:"counts"`
	TotalCount int64                    `json:"total_count"`
}

func NewAppreciationService(
	appreciations repository.AppreciationRepository,
	publisher events.Publisher,
	notifier UserNotifier,
) *AppreciationService {
	return &AppreciationService{
		appreciations: appreciations,
		dispatch:      newDispatcher(publisher, notifier),
	}
}

// Appreciate records userID's reaction at level on highlightID. Re-sending
// the same level changes nothing.
func (s *AppreciationService) Appreciate(ctx context.Context, highlightID, userID uint, level int) (*AppreciationResult, error) {
	lvl := models.AppreciationLevel(level)
	if !lvl.Valid() {
		return nil, models.NewValidationError("Appreciation level must be between 1 and 6")
	}

	span, ctx := observability.NewSpan(ctx, "appreciation.apply",
		attribute.Int("highlight.id", int(highlightID)),
		attribute.Int("appreciation.level", level),
	)
	defer span.End()

	out, err := s.appreciations.Apply(ctx, highlightID, userID, lvl)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.Int("reputation.delta", out.Delta))

	outcome := "unchanged"
	switch {
	case out.Created:
		outcome = "created"
	case out.Changed:
		outcome = "updated"
	}
	observability.RecordAppreciation(level, outcome, out.Delta)

	if out.Changed {
		s.dispatch.emit(ctx, events.Event{
			Type:        events.TypeHighlightAppreciated,
			HighlightID: highlightID,
			ActorID:     userID,
			TargetID:    out.AuthorID,
			Level:       level,
			Delta:       out.Delta,
		}, out.AuthorID)
	}

	counts, err := s.appreciations.LevelCounts(ctx, []uint{highlightID})
	if err != nil {
		return nil, err
	}
	res := &AppreciationResult{Level: lvl, Counts: counts[highlightID]}
	if res.Counts == nil {
		res.Counts = models.NewLevelCounts()
	}
	for _, n := range res.Counts {
		res.TotalCount += n
	}
	return res, nil
}
