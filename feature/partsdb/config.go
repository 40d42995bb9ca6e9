package partsdb

// Config names the lookup table of the parts database.
type Config struct {
	// Table is the lookup table or view.
	Table string `mapstructure:"table" default:"TOS_AUX"`
	// KeyColumn is matched against the part number.
	KeyColumn string `mapstructure:"key_column" default:"N_DESENHO"`
}
