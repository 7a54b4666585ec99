package telegram

import (
	"github.com/go-telegram/bot/models"

	botpkg "github.com/nbenali/campusbot-go/internal/bot"
)

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// ChoicesKeyboard renders dispatcher choices as an inline keyboard,
// one button per row so long institution names stay readable.
// Returns nil for an empty choice list.
func ChoicesKeyboard(choices []botpkg.Choice) *models.InlineKeyboardMarkup {
	if len(choices) == 0 {
		return nil
	}
	rows := make([][]models.InlineKeyboardButton, 0, len(choices))
	for _, choice := range choices {
		rows = append(rows, []models.InlineKeyboardButton{
			InlineButton(choice.Label, choice.Data),
		})
	}
	return InlineKeyboard(rows...)
}
