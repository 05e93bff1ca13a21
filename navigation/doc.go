// Package navigation holds the browsing core: address normalization, the
// session history log, tabs, and the controller that ties them together.
//
// Nothing in this package touches the terminal or the network directly.
// Page loading goes through the Fetcher interface and comes back as a
// Completion that the owning goroutine applies with Controller.Apply.
package navigation
