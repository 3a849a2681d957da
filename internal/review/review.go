// Package review produces feedback for submitted writings and speeches.
package review

import (
	"errors"
	"fmt"

	"github.com/TobiSchelling/DailyPen/internal/store"
)

// Generator is the interface for review producers.
type Generator interface {
	Generate(target store.TargetType, targetID string) store.NewReview
}

var (
	ErrUnknownTargetType = errors.New("unknown review target type")
	ErrTargetNotFound    = errors.New("review target not found")
)

// Dimensions returns the scored dimensions for a target type.
func Dimensions(target store.TargetType) []string {
	if target == store.TargetSpeech {
		return append([]string(nil), speechDimensions...)
	}
	return append([]string(nil), writingDimensions...)
}

// Target is the submission a review belongs to, as it was when looked up.
type Target struct {
	Type       store.TargetType
	ID         string
	MaterialID string
	Content    string
	WordCount  int
}

// ForTarget returns the review of a saved writing or speech, generating and
// saving one the first time it is asked for, along with the submission
// itself so callers need not look it up again.
func ForTarget(s *store.Store, gen Generator, target store.TargetType, targetID string) (store.AIReview, Target, error) {
	t := Target{Type: target, ID: targetID}
	switch target {
	case store.TargetWriting:
		w := s.Writing(targetID)
		if w == nil {
			return store.AIReview{}, Target{}, fmt.Errorf("writing %q: %w", targetID, ErrTargetNotFound)
		}
		t.MaterialID, t.Content, t.WordCount = w.MaterialID, w.Content, w.WordCount
	case store.TargetSpeech:
		sp := s.Speech(targetID)
		if sp == nil {
			return store.AIReview{}, Target{}, fmt.Errorf("speech %q: %w", targetID, ErrTargetNotFound)
		}
		t.MaterialID, t.Content, t.WordCount = sp.SpeechMaterialID, sp.Content, sp.WordCount
	default:
		return store.AIReview{}, Target{}, fmt.Errorf("%q: %w", target, ErrUnknownTargetType)
	}

	r := s.ReviewOrCreate(targetID, func() store.NewReview {
		return gen.Generate(target, targetID)
	})
	return r, t, nil
}
