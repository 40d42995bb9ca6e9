package portal

// Config holds the corporate portal location and navigation links.
type Config struct {
	// URL is the portal home page where the operator logs in.
	URL string `mapstructure:"url" default:"https://web.embraer.com.br/irj/portal"`
	// FSELink opens the FSE application in a new window.
	FSELink string `mapstructure:"fse_link" default:"#L2N10"`
	// DrawingsLink opens the engineering drawings page.
	DrawingsLink string `mapstructure:"drawings_link" default:"#L2N1"`
}
