package transit

type DataSource struct {
	OriginalFormat string `groups:"internal"` // or enum (eg. MBTA-JSON, GTFS-RT)
	Provider       string `groups:"internal"`
	Dataset        string `groups:"internal"`
	Identifier     string `groups:"internal"`
}
