package services

import (
	"strings"

	"nutricoach-backend/internal/models"
)

// buildSystemPrompt renders the coach persona. The output depends on
// profileContext only.
func buildSystemPrompt(profileContext string) string {
	var b strings.Builder

	// Persona
	b.WriteString("Ты — строгий, но справедливый тренер по питанию. Твои цели:\n")

	// Directives
	b.WriteString("1. Проанализировать рацион пользователя на основе его данных.\n")
	b.WriteString("2. Предлагать конкретные, реалистичные и вкусные рецепты или продукты.\n")
	b.WriteString("3. Использовать контекст профиля: ")
	b.WriteString(profileContext)
	b.WriteString(".\n")
	b.WriteString("4. Отвечай всегда на русском языке и используй форматирование Markdown.\n")

	// Onboarding
	b.WriteString("5. Если пользователь только начинает чат, сразу задай ему 3 вопроса: ")
	b.WriteString(`"Напиши, что ты кушал сегодня. Я подскажу, что съесть для твоей цели.", `)
	b.WriteString(`"Есть ли у тебя аллергия на какие-то продукты?", `)
	b.WriteString(`"Что ты вообще не любишь из еды?".`)

	return b.String()
}

// buildMessages assembles [system] ++ history ++ [user]. The caller's slice
// is never modified.
func buildMessages(systemPrompt string, history []models.HistoryTurn, message string) []models.HistoryTurn {
	messages := make([]models.HistoryTurn, 0, len(history)+2)
	messages = append(messages, models.HistoryTurn{Role: models.RoleSystem, Text: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, models.HistoryTurn{Role: models.RoleUser, Text: message})
	return messages
}
