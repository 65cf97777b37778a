package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldDaysUntil = "days_until_due"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentState    = "state"
	ComponentStorage  = "storage"
	ComponentNotify   = "notify"
	ComponentInsights = "insights"
	ComponentWorker   = "worker"
)
