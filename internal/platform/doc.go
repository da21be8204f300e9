package platform

// Package platform contains OS integration helpers: filesystem utilities,
// filename sanitization, and opening/revealing files in the host system.
