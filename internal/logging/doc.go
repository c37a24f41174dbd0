// Package logging builds the slog loggers used across provq.
//
// Two formats are supported: "console" (human readable key=value lines) and
// "json" (one object per record with ts/level/msg keys). Levels are parsed
// by name; unknown names fall back to info.
package logging
