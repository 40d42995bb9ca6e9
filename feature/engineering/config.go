package engineering

import "time"

// Config holds the drawing repository frames and selectors.
type Config struct {
	ContentFrame    string `mapstructure:"content_frame" default:"#contentAreaFrame"`
	InnerFrame      string `mapstructure:"inner_frame" default:"//iframe[starts-with(@id, 'ivuFrm_')]"`
	PartNumberInput string `mapstructure:"part_number_input" default:"//input[contains(@id, 'PartNumber')]"`
	DrawingButton   string `mapstructure:"drawing_button" default:"//*[@id='FOAH.Dplpl049View.cmdGBI']"`
	RevisionNode    string `mapstructure:"revision_node" default:"//*[@id='FOAHJJEL.GbiMenu.TreeNodeType1.0.childNode.0.childNode.0.childNode.0.childNode.0-cnt-start']"`
	// NotFound matches the message bar shown when the part number is unknown.
	NotFound string `mapstructure:"not_found" default:"//*[contains(@class, 'urMsgBarTxt')]"`
	// BackButton returns to the search form from either result view.
	BackButton string `mapstructure:"back_button" default:"//*[@id='FOAHJJEL.GbiMenu.cmdRetornarNaveg'] | //*[@id='FOAH.Dplpl049View.cmdVoltar'] | //div[contains(@ct, 'B') and .//span[normalize-space()='Voltar']]"`
	// ResultTimeoutSeconds bounds the wait for the revision tree.
	ResultTimeoutSeconds int `mapstructure:"result_timeout_seconds" default:"5"`
}

// DefaultConfig returns the configuration matching the production drawing pages.
func DefaultConfig() Config {
	return Config{
		ContentFrame:         "#contentAreaFrame",
		InnerFrame:           "//iframe[starts-with(@id, 'ivuFrm_')]",
		PartNumberInput:      "//input[contains(@id, 'PartNumber')]",
		DrawingButton:        "//*[@id='FOAH.Dplpl049View.cmdGBI']",
		RevisionNode:         "//*[@id='FOAHJJEL.GbiMenu.TreeNodeType1.0.childNode.0.childNode.0.childNode.0.childNode.0-cnt-start']",
		NotFound:             "//*[contains(@class, 'urMsgBarTxt')]",
		BackButton:           "//*[@id='FOAHJJEL.GbiMenu.cmdRetornarNaveg'] | //*[@id='FOAH.Dplpl049View.cmdVoltar'] | //div[contains(@ct, 'B') and .//span[normalize-space()='Voltar']]",
		ResultTimeoutSeconds: 5,
	}
}

// ResultTimeout returns ResultTimeoutSeconds as a duration.
func (c Config) ResultTimeout() time.Duration {
	if c.ResultTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.ResultTimeoutSeconds) * time.Second
}
