package domain

import (
	"math"
	"time"
)

// Win-prediction score bounds. The score is advisory and never reported as
// a certainty, so it is clamped away from 0 and 100.
const (
	MinWinChance = 5
	MaxWinChance = 95
)

// PredictWinChance estimates, on a 5-95 scale, how likely a bid of
// candidateAmount is to ultimately win the auction. Four weighted signals:
//
//   - bid ratio (30): how far the candidate tops the current bid
//   - popularity (25, inverse): watchlist interest relative to views means
//     latent competition
//   - time pressure (up to 20): less runway leaves less room for rivals
//   - competition density (25, inverse): accepted bids per remaining day
//
// The result never feeds the accept/reject decision; it is display advice
// for the bidder typing an amount.
func PredictWinChance(a *Auction, candidateAmount int64, now time.Time) int {
	bidRatio := 1.2
	if a.CurrentBid > 0 {
		bidRatio = float64(candidateAmount) / float64(a.CurrentBid)
	}

	views := a.Views
	if views < 1 {
		views = 1
	}
	popularityIndex := float64(a.WatchlistCount) / float64(views)

	daysRemaining := DaysUntil(now, a.EndsAt)
	days := daysRemaining
	if days < 1 {
		days = 1
	}
	competitiveIndex := float64(a.TotalBids) / float64(days)

	var winChance float64

	switch {
	case bidRatio >= 1.2:
		winChance += 30
	case bidRatio >= 1.1:
		winChance += 25
	case bidRatio > 1.0:
		winChance += 20
	default:
		winChance += 10
	}

	winChance += 25 * (1 - math.Min(popularityIndex*2, 0.9))

	switch {
	case daysRemaining <= 1:
		winChance += 20
	case daysRemaining <= 3:
		winChance += 15
	case daysRemaining <= 7:
		winChance += 10
	default:
		winChance += 5
	}

	winChance += 25 * (1 - math.Min(competitiveIndex/2, 0.9))

	score := int(math.Round(winChance))
	if score < MinWinChance {
		score = MinWinChance
	}
	if score > MaxWinChance {
		score = MaxWinChance
	}
	return score
}

// PredictionBand is the display-only grouping of a win-chance score. It is
// layered on top of the score for presentation and carries no weight in
// validation or scoring.
type PredictionBand string

const (
	BandExcellent PredictionBand = "excellent"
	BandGood      PredictionBand = "good"
	BandModerate  PredictionBand = "moderate"
	BandLow       PredictionBand = "low"
	BandVeryLow   PredictionBand = "very_low"
)

// BandFor maps a score to its display band.
func BandFor(score int) PredictionBand {
	switch {
	case score >= 80:
		return BandExcellent
	case score >= 60:
		return BandGood
	case score >= 40:
		return BandModerate
	case score >= 20:
		return BandLow
	default:
		return BandVeryLow
	}
}
