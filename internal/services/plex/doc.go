// Package plex talks to a Plex Media Server over its HTTP API.
//
// The client lists library sections, section contents and show episodes, and
// deletes library items by rating key. Every request carries the configured
// X-Plex-Token and decodes the XML MediaContainer responses. A rejected token
// surfaces as ErrUnauthorized so callers can point the operator at the right
// setting.
package plex
