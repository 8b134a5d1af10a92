package model

// ServiceSkills lists the skills a technician needs for each known service type.
var ServiceSkills = map[string][]string{
	"ac_repair":      {"hvac", "refrigeration"},
	"furnace_repair": {"hvac", "heating"},
	"heat_pump":      {"hvac", "heat_pump_certified"},
	"maintenance":    {"hvac"},
	"emergency":      {"hvac", "emergency_certified"},
	"installation":   {"hvac", "install_certified"},
}

// ServiceTypeExisting tags jobs rebuilt from a previous schedule.
const ServiceTypeExisting = "existing"
