package server

// Config holds configuration for the control HTTP server.
type Config struct {
	// Enabled starts the control API next to the console.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
}

// Address returns the listen address for Port.
func (c Config) Address() string {
	if c.Port == "" {
		return ":8080"
	}
	if c.Port[0] == ':' {
		return c.Port
	}
	return ":" + c.Port
}

// Secured reports whether requests must carry the API key.
func (c Config) Secured() bool {
	return c.ApiKey != ""
}
