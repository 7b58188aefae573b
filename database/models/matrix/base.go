package matrix

import "github.com/trimatrixio/matrix-engine/database/models"

// AllModels collects available models.
var AllModels = []interface{}{
	&models.System{},

	&User{},
	&Slot{},
	&Position{},
	&UserSlotAccount{},
	&Earning{},
	&DividendPoolRecord{},
	&ReentryEvent{},
	&CommissionPlan{},
}
