package errors

// ErrorTemplate is the registered text for an error code.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps codes to templates. F1xx are configuration errors, F2xx
// runtime errors and F3xx command line errors.
var registry = map[string]ErrorTemplate{
	// Configuration (F101-F119)

	"F101": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "The configuration file passed with --config does not exist.",
	},
	"F102": {
		Category: CategoryConfig,
		Message:  "Invalid config JSON",
		Detail:   "floaties.json could not be parsed.",
	},
	"F103": {
		Category: CategoryConfig,
		Message:  "Invalid listen address",
		Detail:   "listen must be host:port, for example \":8080\" or \"127.0.0.1:3000\".",
	},
	"F104": {
		Category: CategoryConfig,
		Message:  "Invalid API base URL",
		Detail:   "api.baseURL must be an absolute http, https or s3 URL.",
	},
	"F105": {
		Category: CategoryConfig,
		Message:  "Invalid auth mode",
		Detail:   "auth.mode must be \"static\" or \"callback\".",
	},
	"F106": {
		Category: CategoryConfig,
		Message:  "Missing auth token",
		Detail:   "Static auth mode issues auth.token on every login, so it cannot be empty.",
	},
	"F107": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "log.level must be one of debug, info, warn or error.",
	},
	"F108": {
		Category: CategoryConfig,
		Message:  "Invalid locale",
		Detail:   "locale must be a BCP 47 language tag such as \"en\" or \"de-CH\".",
	},
	"F109": {
		Category: CategoryConfig,
		Message:  "Invalid timeout",
		Detail:   "api.timeout and auth.loginTimeout must be Go durations such as \"10s\".",
	},

	// Runtime (F201-F219)

	"F201": {
		Category: CategoryRuntime,
		Message:  "Server failed to start",
		Detail:   "The HTTP listener could not be opened.",
	},
	"F202": {
		Category: CategoryRuntime,
		Message:  "Server shutdown failed",
		Detail:   "Open connections did not close before the shutdown deadline.",
	},
	"F203": {
		Category: CategoryRuntime,
		Message:  "Invalid client message",
		Detail:   "A browser sent a frame that is not a known intent.",
	},

	// Command line (F301-F319)

	"F301": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		Detail:   "The command was called with the wrong number or kind of arguments.",
	},
	"F302": {
		Category: CategoryCLI,
		Message:  "Invalid path",
		Detail:   "The path must start with \"/\" and stay on this site.",
	},
	"F303": {
		Category: CategoryCLI,
		Message:  "Config file exists",
		Detail:   "init will not overwrite an existing floaties.json.",
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
