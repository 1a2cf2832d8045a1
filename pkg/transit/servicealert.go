package transit

import "time"

type ServiceAlert struct {
	PrimaryIdentifier string `groups:"basic"`

	CreationDateTime     time.Time `groups:"detailed"`
	ModificationDateTime time.Time `groups:"detailed"`

	DataSource *DataSource `groups:"internal"`

	AlertType ServiceAlertType `groups:"basic"`

	Title string `groups:"basic"`
	Text  string `groups:"basic"`

	MatchedRouteIDs []string `groups:"internal"`

	ValidFrom  time.Time `groups:"internal"`
	ValidUntil time.Time `groups:"internal"`
}

type ServiceAlertType string

const (
	ServiceAlertTypeInformation      ServiceAlertType = "Information"
	ServiceAlertTypeWarning                           = "Warning"
	ServiceAlertTypeStopClosed                        = "StopClosed"
	ServiceAlertTypeServiceSuspended                  = "ServiceSuspended"
	ServiceAlertTypeSevereDelays                      = "SevereDelays"
	ServiceAlertTypeDelays                            = "Delays"
	ServiceAlertTypeMinorDelays                       = "MinorDelays"
	ServiceAlertTypePlanned                           = "Planned"
)

func (a *ServiceAlert) IsValid(checkTime time.Time) bool {
	return checkTime.After(a.ValidFrom) && checkTime.Before(a.ValidUntil)
}
