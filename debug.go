package spritelayer

import "log"

// globalDebug gates warning-level logging (missing atlas regions, dropped
// mutations, resource exhaustion) so a production host isn't forced to
// filter log output it never asked for. Set via LayerOptions.Debug.
var globalDebug bool

// logWarn logs a warning through the standard logger when debug logging is
// enabled. Warnings never abort the caller; they exist so a host can
// diagnose degraded-but-recovered conditions (InvalidImage,
// ResourceExhaustion) during development.
func logWarn(format string, args ...any) {
	if !globalDebug {
		return
	}
	log.Printf("spritelayer: "+format, args...)
}
