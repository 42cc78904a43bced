// Package device_tools provides tools for mobile and Chrome OS device
// management: inventory listings, per-device detail and admin actions
// such as approve, block and remote wipe.
package device_tools
