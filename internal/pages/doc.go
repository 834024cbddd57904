// Package pages holds the controllers behind the console's four screens:
// products, categories, sales and the dashboard.
//
// A controller is created per activation and owns its view state. Fetches
// are tagged with a monotonically increasing token and a response is only
// applied when it is newer than the last one applied, so a slow earlier
// fetch can never overwrite a later one. Every failure is converted into
// the state's Error message; methods also return the error for callers
// that need it.
package pages
