package models

import "errors"

// Message is a fixed identifier of a user-visible, one-shot notification.
type Message string

const (
	MsgSelectLocation     Message = "err_select_location"
	MsgEnterTitle         Message = "err_enter_title"
	MsgReminderSaved      Message = "reminder_saved"
	MsgSaveFailed         Message = "err_save_failed"
	MsgPermissionDenied   Message = "err_permission_denied"
	MsgLocationDisabled   Message = "err_location_disabled"
	MsgGeofenceFailed     Message = "err_geofence_failed"
	MsgMissingCoordinates Message = "err_missing_coordinates"
)

var messageText = map[Message]string{
	MsgSelectLocation:     "Please select location",
	MsgEnterTitle:         "Please enter title",
	MsgReminderSaved:      "Reminder Saved !",
	MsgSaveFailed:         "Failed to save reminder, please retry!",
	MsgPermissionDenied:   "Missing permission to set reminder, please retry!",
	MsgLocationDisabled:   "Please enable location to save reminder!",
	MsgGeofenceFailed:     "Failed setting up the geofence",
	MsgMissingCoordinates: "Selected location has no coordinates",
}

// Text returns the English rendering of m, or the identifier itself.
func (m Message) Text() string {
	if t, ok := messageText[m]; ok {
		return t
	}
	return string(m)
}

// ValidationMessage maps a Validate error onto its fixed message.
func ValidationMessage(err error) (Message, bool) {
	switch {
	case errors.Is(err, ErrMissingLocation):
		return MsgSelectLocation, true
	case errors.Is(err, ErrMissingTitle):
		return MsgEnterTitle, true
	default:
		return "", false
	}
}
