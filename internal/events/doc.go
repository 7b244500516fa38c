// Package events provides the per-engine notification bus.
//
// Each engine owns one Bus. Subscribers registered for a type are called
// synchronously, in registration order, when an event of that type is
// published. When a type has no subscribers the bus calls the default handler
// set for it, if any.
//
// Every published event is also forwarded to a watermill GoChannel under a
// topic named after its type. Consumers that prefer a message stream (the
// history recorder) subscribe there; publishing blocks until they ack.
package events
