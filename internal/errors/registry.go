package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Reconcile errors (M001-M099)

	"M001": {
		Category: CategoryReconcile,
		Message:  "Nil node passed to reconcile",
	},
	"M002": {
		Category: CategoryReconcile,
		Message:  "Hook aborted reconcile",
	},
	"M003": {
		Category: CategoryParse,
		Message:  "Invalid markup",
	},

	// Configuration errors (C001-C099)

	"C001": {
		Category: CategoryConfig,
		Message:  "Config file unreadable",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Config file malformed",
	},
	"C003": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// Storage errors (S001-S099)

	"S001": {
		Category: CategoryStorage,
		Message:  "Snapshot not found",
	},
	"S002": {
		Category: CategoryStorage,
		Message:  "Storage backend failure",
	},

	// Server errors (H001-H099)

	"H001": {
		Category: CategoryServer,
		Message:  "Tree not found",
	},
	"H002": {
		Category: CategoryServer,
		Message:  "Bad request",
	},
	"H003": {
		Category: CategoryServer,
		Message:  "Internal server error",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
