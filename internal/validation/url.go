package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// EndpointValidator validates the API endpoints flik talks to.
type EndpointValidator struct {
	// RequireHTTPS rejects plain http endpoints
	RequireHTTPS bool
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewEndpointValidator creates a validator that accepts http and https.
// Local endpoints are allowed so tests and proxies can stand in for the APIs.
func NewEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		RequireHTTPS: false,
		MaxLength:    2048,
	}
}

// NewStrictEndpointValidator only accepts https endpoints.
func NewStrictEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		RequireHTTPS: true,
		MaxLength:    2048,
	}
}

// ValidateAndNormalize validates an endpoint URL and returns it without a
// trailing slash.
func (v *EndpointValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}

	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	switch parsedURL.Scheme {
	case "https":
	case "http":
		if v.RequireHTTPS {
			return "", fmt.Errorf("URL must use https protocol")
		}
	default:
		return "", fmt.Errorf("URL must use http or https protocol")
	}

	if parsedURL.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}

	if strings.Contains(parsedURL.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in URL path")
	}

	if parsedURL.User != nil {
		return "", fmt.Errorf("credentials must not be embedded in the URL")
	}

	return strings.TrimSuffix(parsedURL.String(), "/"), nil
}
