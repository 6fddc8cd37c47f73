// Package notifications pushes review summaries to an ntfy topic.
//
// Automatic reviews are often run unattended from a timer, so the CLI sends
// one message when such a run completes, pauses, or halts on an error. When
// no topic is configured NewService returns a notifier that does nothing.
package notifications
