//go:build !disablearena

package arena

// Enabled reports whether the arena subsystem is compiled in. Building
// with -tags disablearena flips this to false, and every Context back
// pointer collapses to nil so that callers (see package record) fall back
// to plain system allocation instead. This is the Go-native stand-in for
// the original's USE_SR_MEM_MGMT compile switch.
const Enabled = true
