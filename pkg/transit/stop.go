package transit

type Stop struct {
	PrimaryIdentifier string            `groups:"basic"`
	OtherIdentifiers  map[string]string `groups:"detailed"`

	CreationDateTime     string `groups:"detailed"`
	ModificationDateTime string `groups:"detailed"`

	DataSource *DataSource `groups:"internal"`

	PrimaryName string `groups:"basic"`

	Latitude  float64 `groups:"basic"`
	Longitude float64 `groups:"basic"`

	ParentStation string `groups:"detailed"`
	PlatformCode  string `groups:"detailed"`

	WheelchairBoarding int `groups:"detailed"`

	// High-transfer-volume interchange, eg Park Street or Downtown Crossing
	TransferHub bool `groups:"basic"`

	Status string `groups:"internal"`
}
