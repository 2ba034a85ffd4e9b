package models

import (
	"strconv"
	"strings"
)

// Profile is a user's nutrition targets, keyed by Telegram user ID.
type Profile struct {
	TelegramID     int64   `json:"telegram_id"`
	Goal           string  `json:"goal"` // "loss" | "gain" | "maintain"
	MealFrequency  string  `json:"meal_frequency"`
	TargetCalories int     `json:"target_calories"`
	TargetProtein  int     `json:"target_protein"`
	TargetFat      int     `json:"target_fat"`
	TargetCarbs    int     `json:"target_carbs"`
	Weight         float64 `json:"weight"`
	Age            int     `json:"age"`
	Gender         string  `json:"gender"`
}

// ContextString serializes the profile into the summary a client sends as
// ChatTurnRequest.Context. Field order is fixed so the same profile always
// yields the same string.
func (p *Profile) ContextString() string {
	fields := []string{
		"goal=" + p.Goal,
		"meal_frequency=" + p.MealFrequency,
		"target_calories=" + strconv.Itoa(p.TargetCalories),
		"target_protein=" + strconv.Itoa(p.TargetProtein),
		"target_fat=" + strconv.Itoa(p.TargetFat),
		"target_carbs=" + strconv.Itoa(p.TargetCarbs),
		"weight=" + strconv.FormatFloat(p.Weight, 'f', -1, 64),
		"age=" + strconv.Itoa(p.Age),
		"gender=" + p.Gender,
	}
	return strings.Join(fields, ", ")
}
