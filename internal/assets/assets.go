package assets

var defaultLoader = NewEmbeddedLoader()

// LoadPreamble loads an embedded preamble by name.
func LoadPreamble(name string) (string, error) {
	return defaultLoader.LoadPreamble(name)
}

// LoadStyle loads an embedded CSS style by name.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// PreambleNames lists the embedded preambles.
func PreambleNames() []string {
	return defaultLoader.PreambleNames()
}

// StyleNames lists the embedded styles.
func StyleNames() []string {
	return defaultLoader.StyleNames()
}

// DefaultPreamble returns the built-in preamble.
func DefaultPreamble() string {
	s, err := defaultLoader.LoadPreamble(DefaultPreambleName)
	if err != nil {
		panic("assets: default preamble missing from binary: " + err.Error())
	}
	return s
}
