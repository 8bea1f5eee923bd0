package core

// Canonical field paths of a device-log document.
const (
	FieldDeviceID       = "DeviceId"
	FieldOrganizationID = "OrganizationId"
	FieldUserID         = "UserId"
	FieldTimestamp      = "Timestamp"
	FieldLogLevel       = "LogLevel"
	FieldLogType        = "LogType"
	FieldSummary        = "Summary"
	FieldState          = "LogData.State"
	FieldModel          = "LogData.Model"
	FieldWard           = "LogData.Ward"
	FieldRoom           = "LogData.Room"
	FieldBed            = "LogData.Bed"
	FieldBattery        = "LogData.Battery"
	FieldFirmware       = "LogData.Firmware"
	FieldTagID          = "LogData.AlertTag.TagId"
	FieldTagName        = "LogData.AlertTag.Name"
	FieldTagSeverity    = "LogData.AlertTag.Severity"
	FieldTagStatus      = "LogData.AlertTag.Status"
)

// CanonicalFields lists every known field path in display order.
var CanonicalFields = []string{
	FieldDeviceID,
	FieldOrganizationID,
	FieldUserID,
	FieldTimestamp,
	FieldLogLevel,
	FieldLogType,
	FieldSummary,
	FieldState,
	FieldModel,
	FieldWard,
	FieldRoom,
	FieldBed,
	FieldBattery,
	FieldFirmware,
	FieldTagID,
	FieldTagName,
	FieldTagSeverity,
	FieldTagStatus,
}

var identifierFields = map[string]struct{}{
	FieldDeviceID:       {},
	FieldOrganizationID: {},
	FieldUserID:         {},
	FieldTagID:          {},
}

// IsIdentifier reports whether path names an identifier field. Identifier
// fields are matched exactly and case-sensitively.
func IsIdentifier(path string) bool {
	_, ok := identifierFields[path]
	return ok
}
