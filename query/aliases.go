package query

import (
	"strings"

	"github.com/poiesic/logscope/core"
)

// aliases maps lowercase user-facing names to canonical field paths.
// Never mutated after package init.
var aliases = map[string]string{
	"deviceid":       core.FieldDeviceID,
	"device":         core.FieldDeviceID,
	"device_id":      core.FieldDeviceID,
	"orgid":          core.FieldOrganizationID,
	"org":            core.FieldOrganizationID,
	"org_id":         core.FieldOrganizationID,
	"organization":   core.FieldOrganizationID,
	"organizationid": core.FieldOrganizationID,
	"userid":         core.FieldUserID,
	"user":           core.FieldUserID,
	"user_id":        core.FieldUserID,
	"tagid":          core.FieldTagID,
	"tag":            core.FieldTagID,
	"tag_id":         core.FieldTagID,
	"time":           core.FieldTimestamp,
	"timestamp":      core.FieldTimestamp,
	"date":           core.FieldTimestamp,
	"level":          core.FieldLogLevel,
	"loglevel":       core.FieldLogLevel,
	"type":           core.FieldLogType,
	"logtype":        core.FieldLogType,
	"summary":        core.FieldSummary,
	"message":        core.FieldSummary,
	"msg":            core.FieldSummary,
	"state":          core.FieldState,
	"status":         core.FieldState,
	"model":          core.FieldModel,
	"ward":           core.FieldWard,
	"room":           core.FieldRoom,
	"bed":            core.FieldBed,
	"battery":        core.FieldBattery,
	"firmware":       core.FieldFirmware,
	"alert":          core.FieldTagName,
	"tagname":        core.FieldTagName,
	"alertname":      core.FieldTagName,
	"severity":       core.FieldTagSeverity,
	"alertstatus":    core.FieldTagStatus,
	"tagstatus":      core.FieldTagStatus,
}

// ResolveField maps a user-facing field name to its canonical path.
// Lookup is case-insensitive and ignores surrounding whitespace; unknown
// names are returned trimmed but otherwise unchanged.
func ResolveField(name string) string {
	trimmed := strings.TrimSpace(name)
	if canonical, ok := aliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// Aliases returns a copy of the alias table.
func Aliases() map[string]string {
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}
