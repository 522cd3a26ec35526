package app

import (
	"errors"

	"notedeck/internal/app/sanitizer"
	"notedeck/internal/client"
	"notedeck/internal/logging"
)

// errorMessage is the text a toast or form shows for err. Validation errors
// read as sentences already; backend errors carry their own message.
func errorMessage(err error, fallback string) string {
	var validation *client.ValidationError
	if errors.As(err, &validation) {
		return validation.Error()
	}
	return sanitizer.Line(client.Message(err, fallback))
}

func (m *Model) reportError(op string, err error, fallback string) {
	m.logger.Warn(op+" failed", logging.Err(err))
	m.showErrorToast(errorMessage(err, fallback))
}
