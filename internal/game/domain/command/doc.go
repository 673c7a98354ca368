// Package command defines the command envelope and validation entry points.
//
// Commands are requested player intents. They are never persisted: a command
// is validated against a registered definition, handed to a pure decider, and
// either translated into an ordered event batch or rejected with a typed
// reason. Unknown command types fail fast at the registry boundary.
package command
