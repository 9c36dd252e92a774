// Package broadcast provides type-safe synchronous fan-out of values to a
// set of subscribed handlers.
//
// The package uses Go generics to provide type safety at compile time,
// ensuring published values are strongly typed throughout.
//
// Basic usage:
//
//	pub := broadcast.NewPublisher[string]()
//	defer pub.Close()
//
//	unsubscribe := pub.Subscribe(func(msg string) {
//		fmt.Println(msg)
//	})
//	defer unsubscribe()
//
//	pub.Publish("hello")
//
// Delivery is synchronous: Publish returns after every handler has run.
// Each handler invocation is wrapped in a recover, so a panicking
// subscriber is logged and skipped rather than taking down the publisher
// or starving the remaining subscribers.
package broadcast
