// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler (or the CLI), calls
// repository methods and reports each operation to the logger and the
// metrics recorder.
package service
