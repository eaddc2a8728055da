// Package errorcode names the short error codes the framework itself
// assigns to Exceptions, mirrored from the original error taxonomy (§7).
package errorcode

const (
	ValidationError = "VALIDATION_ERROR"
	BadRequest      = "BAD_REQUEST"
	Forbidden       = "FORBIDDEN"
)
