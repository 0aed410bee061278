package account

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Ramsey-B/peony/pkg/booking"
)

type messageKey int

const (
	msgGeneric messageKey = iota
	msgLocked
	msgInvalid
	msgPending
	msgUnauthorized
)

var messages = map[string]map[messageKey]string{
	"it": {
		msgGeneric:      "Si è verificato un errore. Riprova più tardi.",
		msgLocked:       "Il salone ha già gestito questa prenotazione: non è più modificabile.",
		msgInvalid:      "Controlla i dati inseriti e riprova.",
		msgPending:      "Salvataggio in corso, attendi un momento.",
		msgUnauthorized: "La sessione è scaduta. Accedi di nuovo.",
	},
	"en": {
		msgGeneric:      "Something went wrong. Please try again later.",
		msgLocked:       "The salon has already handled this booking, so it can no longer be changed.",
		msgInvalid:      "Please check the details you entered and try again.",
		msgPending:      "Still saving, please wait a moment.",
		msgUnauthorized: "Your session has expired. Please sign in again.",
	},
}

const DefaultLocale = "it"

func localize(locale string, key messageKey) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	table, ok := messages[locale]
	if !ok {
		table = messages[DefaultLocale]
	}
	return table[key]
}

// UserMessage turns err into text fit to show the customer. Server-provided messages for
// client errors are passed through; everything else gets a localized generic message.
func UserMessage(err error, locale string) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, booking.ErrLocked):
		return localize(locale, msgLocked)
	case errors.Is(err, ErrPending):
		return localize(locale, msgPending)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized:
			return localize(locale, msgUnauthorized)
		case apiErr.StatusCode < http.StatusInternalServerError && apiErr.Message != "":
			return apiErr.Message
		case apiErr.StatusCode == http.StatusBadRequest:
			return localize(locale, msgInvalid)
		}
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return localize(locale, msgInvalid)
	}

	return localize(locale, msgGeneric)
}
