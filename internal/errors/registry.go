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
	// Config Errors (C100-C199)
	// ============================================

	"C100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No console.json was found in the working directory or any parent directory.",
	},
	"C101": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "console.json could not be read or is not valid JSON.",
	},
	"C102": {
		Category: CategoryConfig,
		Message:  "Invalid storage backend",
		Detail:   "storage.backend must be one of memory, file, keyring, redis or sql.",
	},
	"C103": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "serve.port must be between 0 and 65535.",
	},
	"C104": {
		Category: CategoryConfig,
		Message:  "Invalid API base URL",
		Detail:   "api.baseURL must be an absolute http or https URL.",
	},
	"C105": {
		Category: CategoryConfig,
		Message:  "Invalid log settings",
		Detail:   "log.level must be debug, info, warn or error and log.format must be text or json.",
	},
	"C106": {
		Category: CategoryConfig,
		Message:  "Invalid SQL driver",
		Detail:   "storage.sql.driver must be sqlite or pgx.",
	},

	// ============================================
	// Auth Errors (C200-C299)
	// ============================================

	"C200": {
		Category: CategoryAuth,
		Message:  "Login failed",
		Detail:   "The authentication service could not be reached or returned an error.",
	},
	"C201": {
		Category: CategoryAuth,
		Message:  "Invalid credentials",
		Detail:   "The authentication service rejected the username or password.",
	},
	"C202": {
		Category: CategoryAuth,
		Message:  "Malformed login response",
		Detail:   "The login response did not carry accessToken, userId, username and role.",
	},
	"C203": {
		Category: CategoryAuth,
		Message:  "Not logged in",
		Detail:   "No session is stored for this console.",
	},

	// ============================================
	// Storage Errors (C300-C399)
	// ============================================

	"C300": {
		Category: CategoryStorage,
		Message:  "Session storage unavailable",
		Detail:   "The configured session storage backend could not be opened.",
	},
	"C301": {
		Category: CategoryStorage,
		Message:  "Keyring unavailable",
		Detail:   "The OS keyring could not be opened for the console service.",
	},

	// ============================================
	// Routing Errors (C400-C499)
	// ============================================

	"C400": {
		Category: CategoryRouting,
		Message:  "Invalid navigation path",
		Detail:   "Navigation paths must start with a single / and must not contain backslashes.",
	},
	"C401": {
		Category: CategoryRouting,
		Message:  "Navigation did not settle",
		Detail:   "The navigation kept redirecting and never reached a view.",
	},

	// ============================================
	// CLI Errors (C500-C599)
	// ============================================

	"C500": {
		Category: CategoryCLI,
		Message:  "Missing credentials",
		Detail:   "Both a username and a password are required to log in.",
	},
	"C501": {
		Category: CategoryCLI,
		Message:  "Prompt failed",
		Detail:   "The terminal prompt for credentials could not be read.",
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
