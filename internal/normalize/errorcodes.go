package normalize

// errorCodes maps API error codes to human-readable descriptions.
var errorCodes = map[string]string{
	"AUTH_FAILED":         "Authentication failed",
	"RATE_LIMIT_EXCEEDED": "API rate limit exceeded",
	"DEVICE_NOT_FOUND":    "Device not found",
	"POOL_NOT_FOUND":      "Pool not found",
	"COMPONENT_NOT_FOUND": "Component not found",
	"API_ERROR":           "API request failed",
	"NETWORK_ERROR":       "Network connection error",
	"TIMEOUT_ERROR":       "Request timeout",
	"INVALID_RESPONSE":    "Invalid API response",
	"TOKEN_EXPIRED":       "Authentication token expired",
	"REFRESH_FAILED":      "Token refresh failed",
	"UNKNOWN_ERROR":       "Unknown error occurred",
}

// ErrorDescription resolves an error code to its description, falling back
// to a generic message for unknown codes.
func ErrorDescription(code string) string {
	if desc, ok := errorCodes[code]; ok {
		return desc
	}
	return "Unknown error"
}
