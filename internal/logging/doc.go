// Package logging builds the slog loggers used by appcatalog commands.
//
// The console format puts the region, input file, record index and app id a
// line refers to in front of the message; the json format emits one object
// per line. WarnWithContext and ErrorWithContext tag lines with an event type
// and an operator hint, and WithContext adds the run id and region carried on
// a context.
package logging
