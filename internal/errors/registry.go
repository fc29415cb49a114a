package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reactive Errors (E001-E099)
	// ============================================

	"E001": {
		Category: CategoryReactive,
		Message:  "Effect panicked",
		Detail:   "An effect body panicked. The panic was recovered and the effect keeps its registration; values derived from it stay stale until its next successful run.",
	},
	"E002": {
		Category: CategoryReactive,
		Message:  "Cleanup panicked",
		Detail:   "A cleanup registered with OnCleanup (or returned from an effect) panicked. Remaining cleanups still ran.",
	},
	"E003": {
		Category: CategoryReactive,
		Message:  "Mount callback panicked",
		Detail:   "A callback scheduled with OnMount panicked. Other mount callbacks still ran.",
	},
	"E004": {
		Category: CategoryReactive,
		Message:  "Owner disposed",
		Detail:   "The owner scope has been disposed. Reactive work attached to it after disposal is discarded.",
	},
	"E005": {
		Category: CategoryReactive,
		Message:  "OnCleanup called outside an owner",
		Detail:   "OnCleanup was called while no effect or owner scope was running, so the cleanup has nothing to attach to and was discarded.",
	},
	"E006": {
		Category: CategoryReactive,
		Message:  "Timer callback panicked",
		Detail:   "A callback scheduled with After panicked while Tick ran it. Other due timers still ran.",
	},

	// ============================================
	// Render / Host Errors (E100-E199)
	// ============================================

	"E101": {
		Category: CategoryHost,
		Message:  "Host not configured",
		Detail:   "The reconciler needs a host contract to create instances, but none has been registered.",
	},
	"E102": {
		Category: CategoryRender,
		Message:  "Component render failed",
		Detail:   "A component function panicked or returned an error while rendering. No error boundary was registered to handle it.",
	},
	"E103": {
		Category: CategoryHost,
		Message:  "Unknown widget type",
		Detail:   "The host does not know how to create an instance for this tag.",
	},
	"E104": {
		Category: CategoryRender,
		Message:  "Invalid virtual node",
		Detail:   "The virtual node has a kind the reconciler cannot mount.",
	},

	// ============================================
	// Config / Devtools Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "lumina.json failed validation.",
	},
	"E202": {
		Category: CategoryDevtools,
		Message:  "Snapshot upload failed",
		Detail:   "The widget tree snapshot could not be uploaded to the configured bucket.",
	},
	"E203": {
		Category: CategoryDevtools,
		Message:  "Inspector client failed",
		Detail:   "An inspector websocket client could not be served.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
