// Package errors provides structured, actionable error messages for the
// sync console CLI.
//
// Every error carries a code from the registry (e.g. "C201") that maps to a
// category, a short message and a longer explanation. Commands wrap lower
// level failures in a ConsoleError and print them with Format.
//
// # Error Categories
//
//   - config: console.json could not be found, parsed or validated
//   - auth: login failed or the session is missing
//   - storage: the persistent session backend could not be opened
//   - routing: a navigation could not be resolved
//   - cli: invalid command usage
//
// # Usage
//
//	err := errors.New("C201").
//	    WithDetail("The server rejected the username or password.").
//	    WithSuggestion("Check the credentials and run 'syncconsole login' again")
//
//	errors.PrintError(err)
package errors
