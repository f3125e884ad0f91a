// Package notifications delivers janitor audit and error messages.
//
// Senders are individual transports (a Discord webhook, optionally an ntfy
// topic) that report delivery errors. Notifier is the surface evaluators depend
// on: it is best-effort, logs failures, and never returns them to the caller,
// so a dead webhook can never stop a cleanup run.
package notifications
