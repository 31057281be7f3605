package srs

import "github.com/phrazzld/vocab-review/internal/domain"

// StatusFor derives a scheduled card's status from its repetition count.
//
//	repetitions <  ReviewingThreshold  -> learning (includes just-lapsed cards)
//	repetitions <  MasteredThreshold   -> reviewing
//	otherwise                          -> mastered
//
// "new" is never returned: it is only the state before the first review.
func StatusFor(repetitions int, params *Params) domain.CardStatus {
	switch {
	case repetitions < params.ReviewingThreshold:
		return domain.CardStatusLearning
	case repetitions < params.MasteredThreshold:
		return domain.CardStatusReviewing
	default:
		return domain.CardStatusMastered
	}
}
