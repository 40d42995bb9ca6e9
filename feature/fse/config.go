package fse

// Config holds the FSE search page location and selectors.
type Config struct {
	// SearchURL is the FSE search view every lookup starts from and returns to.
	SearchURL string `mapstructure:"search_url" default:"https://appscorp2.embraer.com.br/gfs/#/fse/search/1"`

	OrderInput    string `mapstructure:"order_input" default:"//input[@ng-model='vm.search.orderNumber']"`
	LineInput     string `mapstructure:"line_input" default:"//input[@ng-model='vm.search.orderLine']"`
	SearchButton  string `mapstructure:"search_button" default:"#searchBtn"`
	DetailsButton string `mapstructure:"details_button" default:"//button[contains(@ng-click, 'vm.showFseDetails')]"`
	// NoResults matches the message shown when the search finds nothing. Empty
	// disables the check and an empty search then times out.
	NoResults string `mapstructure:"no_results" default:"//*[contains(@class, 'alert') and contains(normalize-space(), 'Nenhum')]"`

	Header       string `mapstructure:"header" default:"#fseHeader"`
	OrderItem    string `mapstructure:"order_item" default:"//*[@id='fseHeader']/div[1]/div[5]"`
	CodemDate    string `mapstructure:"codem_date" default:"//*[@id='fseHeader']/div[3]/div[1]"`
	PartBlob     string `mapstructure:"part_blob" default:"//*[@id='fseHeader']/div[3]/div[2]"`
	Plant        string `mapstructure:"plant" default:"//*[normalize-space()='PLANTA']/parent::div/following-sibling::div"`
	Traceability string `mapstructure:"traceability" default:"//*[@id='fseHeader']/div[2]/div[3]"`
	Serials      string `mapstructure:"serials" default:"//*[normalize-space()='NÚMERO DE SERIAÇÃO']/ancestor::div[@class='row']/following-sibling::div[@class='row']//div[contains(@class, 'ng-binding')]"`
}

// DefaultConfig returns the configuration matching the production FSE pages.
func DefaultConfig() Config {
	return Config{
		SearchURL:     "https://appscorp2.embraer.com.br/gfs/#/fse/search/1",
		OrderInput:    "//input[@ng-model='vm.search.orderNumber']",
		LineInput:     "//input[@ng-model='vm.search.orderLine']",
		SearchButton:  "#searchBtn",
		DetailsButton: "//button[contains(@ng-click, 'vm.showFseDetails')]",
		NoResults:     "//*[contains(@class, 'alert') and contains(normalize-space(), 'Nenhum')]",
		Header:        "#fseHeader",
		OrderItem:     "//*[@id='fseHeader']/div[1]/div[5]",
		CodemDate:     "//*[@id='fseHeader']/div[3]/div[1]",
		PartBlob:      "//*[@id='fseHeader']/div[3]/div[2]",
		Plant:         "//*[normalize-space()='PLANTA']/parent::div/following-sibling::div",
		Traceability:  "//*[@id='fseHeader']/div[2]/div[3]",
		Serials:       "//*[normalize-space()='NÚMERO DE SERIAÇÃO']/ancestor::div[@class='row']/following-sibling::div[@class='row']//div[contains(@class, 'ng-binding')]",
	}
}
