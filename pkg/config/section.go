package config

// Section is one independently validated block of configuration.
// Sections serialize to and from the generic map form kept by a Store.
type Section interface {
	// ID returns the unique identifier of the section (e.g., "browser")
	ID() string

	// Title returns a short display name
	Title() string

	// Description explains what the section configures
	Description() string

	// Data returns the current settings as a map
	Data() map[string]any

	// SetData updates settings from a map. Unknown keys are ignored.
	SetData(data map[string]any) error

	// Validate checks the current settings
	Validate() error

	// Reset restores defaults
	Reset()
}
