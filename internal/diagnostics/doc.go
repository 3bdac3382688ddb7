// Package diagnostics persists replies the recovery pipeline could not
// repair, for offline inspection. Every sink implements recovery.Sink and
// stores one [Entry] per correlation id.
package diagnostics
