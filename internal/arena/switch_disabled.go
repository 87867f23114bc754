//go:build disablearena

package arena

// Enabled is false when built with -tags disablearena: every caller that
// checks it must fall back to the system allocator and treat all Context
// back pointers as nil.
const Enabled = false
