// Package common holds the shared plumbing for tool handler packages:
// argument parsing helpers, the handler adapter that binds a tool
// descriptor to its run function, and the instrumentation wrapper.
package common
