package transit

type RouteType string

const (
	RouteTypeLightRail RouteType = "LightRail"
	RouteTypeSubway              = "Subway"
	RouteTypeRail                = "Rail"
	RouteTypeBus                 = "Bus"
	RouteTypeFerry               = "Ferry"
	RouteTypeUnknown             = "UNKNOWN"
)

// RouteTypeFromGTFS maps a GTFS route_type integer to our route type.
func RouteTypeFromGTFS(routeType int) RouteType {
	switch routeType {
	case 0:
		return RouteTypeLightRail
	case 1:
		return RouteTypeSubway
	case 2:
		return RouteTypeRail
	case 3:
		return RouteTypeBus
	case 4:
		return RouteTypeFerry
	}

	return RouteTypeUnknown
}

type Route struct {
	PrimaryIdentifier string            `groups:"basic"`
	OtherIdentifiers  map[string]string `groups:"detailed"`

	CreationDateTime     string `groups:"detailed"`
	ModificationDateTime string `groups:"detailed"`

	DataSource *DataSource `groups:"internal"`

	ShortName string    `groups:"basic"`
	LongName  string    `groups:"basic"`
	Type      RouteType `groups:"basic"`

	Colour     string `groups:"basic"`
	TextColour string `groups:"basic"`

	// Route runs at street level for part of its length, sharing road
	// space or traffic signals (Green Line branches, Mattapan trolley)
	SurfaceRunning bool `groups:"basic"`
}
