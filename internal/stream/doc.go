// Package stream implements the realtime change-notification layer: a
// server-sent-event endpoint that watches the todo collection for changes
// relevant to the authenticated user, coalesces bursts into a single
// notification, and manages per-connection lifecycle (keep-alives, watch
// subscriptions, teardown on disconnect).
//
// Clients receive no payloads beyond "your todos changed"; they react by
// re-fetching the canonical list through the query API.
package stream
