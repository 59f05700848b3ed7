package notificator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/core-coin/stips/internal/models"
)

func TestImportant(t *testing.T) {
	emailWorthy := []models.EventType{
		models.EventDeliveryFailed,
		models.EventEmergencyInitiated,
		models.EventEmergencyExecuted,
		models.EventAuthorityChanged,
		models.EventPaused,
	}
	for _, et := range emailWorthy {
		assert.True(t, important(et), string(et))
	}

	chatOnly := []models.EventType{
		models.EventJarRegistered,
		models.EventJarDeleted,
		models.EventTipSettled,
		models.EventEscrowWithdrawn,
		models.EventUnpaused,
		models.EventFeeRecipientSet,
		models.EventEmergencyCancelled,
	}
	for _, et := range chatOnly {
		assert.False(t, important(et), string(et))
	}
}
