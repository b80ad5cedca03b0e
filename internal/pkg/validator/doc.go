// Package validator checks request and dependency structs against their
// `validate` tags.
//
// Use cases depend on the Validator interface; V10Validator is the
// go-playground/validator implementation with English messages.
package validator
