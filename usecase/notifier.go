package usecase

import "messenger-api/dto"

// Notifier pushes an event to one user's live connection. Implementations
// must not block and never fail the calling operation.
type Notifier interface {
	Notify(userID string, event dto.Event)
}

type NopNotifier struct{}

func (NopNotifier) Notify(string, dto.Event) {}
