// Package component defines lifecycle-managed services.
//
// A Component is started and stopped by a Registry in deterministic order
// and reports its health on demand. The HTTP adapter and the test server
// in testutil are both components.
//
// # Interfaces
//
//   - Component: Start/Stop/Health lifecycle
//   - Describable: one-line summary for startup output
package component
