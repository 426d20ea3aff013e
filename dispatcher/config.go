package dispatcher

const defaultIDPrefix = "ID_"

// Config holds dispatcher initialization parameters.
type Config struct {
	// IDPrefix is prepended to the registration counter to form callback ids.
	IDPrefix string `json:"id_prefix,omitempty" yaml:"id_prefix,omitempty"`
}

// DefaultConfig returns a Config using the "ID_" id prefix.
func DefaultConfig() Config {
	return Config{
		IDPrefix: defaultIDPrefix,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.IDPrefix != "" {
		c.IDPrefix = source.IDPrefix
	}
}
