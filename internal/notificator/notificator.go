package notificator

import (
	"runtime/debug"

	"github.com/core-coin/stips/internal/models"
	"github.com/core-coin/stips/pkg/logger"
)

// Notificator fans engine events out to the configured operator channels.
// Emit never blocks the settlement path: dispatch runs on its own goroutine
// with panic recovery.
type Notificator struct {
	logger *logger.Logger

	TelegramNotificator *TelegramNotificator
	EmailNotificator    *EmailNotificator
}

func NewNotificator(logger *logger.Logger, telNotif *TelegramNotificator, emailNotif *EmailNotificator) *Notificator {
	return &Notificator{logger: logger, TelegramNotificator: telNotif, EmailNotificator: emailNotif}
}

// safeCall runs a function with panic recovery
func (n *Notificator) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

func (n *Notificator) Emit(event *models.Event) {
	go n.dispatch(event)
}

func (n *Notificator) dispatch(event *models.Event) {
	message := event.String()
	n.logger.Debug("Dispatching event ", "type ", event.Type)

	if n.TelegramNotificator != nil {
		n.safeCall(func() { n.TelegramNotificator.SendNotification(message) }, "telegramNotification")
	}
	if n.EmailNotificator != nil && important(event.Type) {
		n.safeCall(func() { n.EmailNotificator.SendNotification(message) }, "emailNotification")
	}
}

// important selects the events worth an email on top of the chat feed.
func important(t models.EventType) bool {
	switch t {
	case models.EventDeliveryFailed, models.EventEmergencyInitiated,
		models.EventEmergencyExecuted, models.EventAuthorityChanged, models.EventPaused:
		return true
	}
	return false
}
