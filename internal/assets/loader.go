package assets

// AssetLoader defines the contract for loading preambles and stylesheets.
type AssetLoader interface {
	// LoadPreamble loads a mom preamble by name (without .mom extension).
	// Returns ErrPreambleNotFound if the preamble doesn't exist.
	LoadPreamble(name string) (string, error)

	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)
}

// DefaultPreambleName is the name of the built-in preamble.
const DefaultPreambleName = "default"

// DefaultStyleName is the name of the built-in CSS style.
const DefaultStyleName = "default"
