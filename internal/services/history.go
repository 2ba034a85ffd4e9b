package services

import "nutricoach-backend/internal/models"

// HistoryWindow decides which prior turns are forwarded to the provider.
// Implementations must keep chronological order.
type HistoryWindow interface {
	Apply(history []models.HistoryTurn) []models.HistoryTurn
}

// FullHistory forwards every turn the caller supplied.
type FullHistory struct{}

func (FullHistory) Apply(history []models.HistoryTurn) []models.HistoryTurn {
	return history
}

// LastTurns keeps only the n most recent turns.
type LastTurns int

func (n LastTurns) Apply(history []models.HistoryTurn) []models.HistoryTurn {
	if n <= 0 || len(history) <= int(n) {
		return history
	}
	return history[len(history)-int(n):]
}

// NewHistoryWindow returns LastTurns(size) for a positive size and FullHistory otherwise.
func NewHistoryWindow(size int) HistoryWindow {
	if size > 0 {
		return LastTurns(size)
	}
	return FullHistory{}
}
