// Package watch provides change notification over the todo collection.
// A Source accepts predicate-filtered subscriptions and delivers an event
// whenever a matching todo may have changed. Deliveries carry no payload
// semantics beyond "something matching the predicate changed"; consumers
// are expected to re-fetch canonical state through the query API.
package watch
