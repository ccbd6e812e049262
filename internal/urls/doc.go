// Package urls provides centralized constants for all documentation URLs used
// throughout the application.
//
// All documentation URLs are defined here as exported constants so they can
// be updated in a single location.
//
// Usage:
//
//	import "github.com/muurk/bravia/internal/urls"
//
//	fmt.Printf("For more information, see: %s\n", urls.SimpleIPControl)
package urls
