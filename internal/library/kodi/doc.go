// Package kodi implements library.Library over the Kodi JSON-RPC API.
//
// Video items use the VideoLibrary namespace and music items the
// AudioLibrary namespace. Art values come back wrapped in image:// URLs and
// are unwrapped on read; writes send plain URLs and null to clear a slot.
package kodi
