package types

// Version is the canonical project version.
// Reported by the CLI and carried on every notification event.
const Version = "1.0.0"

// EventVersion is the schema version of published notification events.
// Kept in lockstep with Version.
const EventVersion = Version
