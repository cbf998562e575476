// Package services contains the application services of the geokeeper
// client: the reminder Repository that turns store outcomes into Results,
// and the local authentication service that gates the reminder screens.
package services
