// Package types holds the error taxonomy shared by the facade and its
// adapters, along with the checked numeric conversions used when a column is
// read into a narrower Go type.
//
// Every failure is matchable with errors.Is against one of the Err* kinds:
//
//	err := stmt.Bind(1, 2, 3)
//	if errors.Is(err, types.ErrTooManyParameters) {
//	    // ...
//	}
//
// Native backend failures are reported as *DriverError, which keeps the
// backend's numeric code and message and unwraps to the original error.
package types
