package services

import (
	"strings"

	"github.com/Dosada05/tennis-tournament/brackets"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optionalString trims s and turns blank values into nil.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func notify(n Notifier, tournamentID int, eventType string, payload interface{}) {
	if n == nil {
		return
	}
	n.Notify(tournamentID, eventType, payload)
}

// Notifier получает события после успешного коммита. Доставка не гарантируется.
type Notifier interface {
	Notify(tournamentID int, eventType string, payload interface{})
}

var _ Notifier = (*brackets.Hub)(nil)
