// Package errors provides the classified error primitives used across the asset builder.
//
// Every pipeline stage that can fail wraps the underlying cause in a ClassifiedError
// whose category names the failing concern:
//   - manifest: unreadable manifest, missing source file, failed stat
//   - conversion / compression: a plugin returned an error
//   - save: writing into the staging area failed
//   - staging: removing the staging area failed
//
// Example usage:
//
//	err := errors.ConversionError("convert failed").
//		WithContext("asset", "app.coffee").
//		WithContext("plugin", "coffeescript").
//		WithCause(cause).
//		Build()
package errors
