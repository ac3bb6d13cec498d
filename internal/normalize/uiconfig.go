package normalize

import (
	"github.com/Roagert/fluidra-pool/internal/model"
)

// UIConfig promotes the known sections of a device uiconfig payload.
// Unknown payload shapes yield a zero-valued config with defaults applied.
func UIConfig(raw []byte) model.UIConfig {
	obj, err := Object(raw)
	if err != nil {
		obj = map[string]any{}
	}

	cfg := model.UIConfig{
		UIConfig:             section(obj, "uiConfig"),
		Features:             section(obj, "features"),
		Controls:             section(obj, "controls"),
		DisplayOptions:       section(obj, "displayOptions"),
		Language:             str(obj["language"]),
		Theme:                str(obj["theme"]),
		Notifications:        section(obj, "notifications"),
		AutomationRules:      section(obj, "automationRules"),
		ScheduleSettings:     section(obj, "scheduleSettings"),
		MaintenanceReminders: section(obj, "maintenanceReminders"),
		EnergySettings:       section(obj, "energySettings"),
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Theme == "" {
		cfg.Theme = "default"
	}
	return cfg
}
