// Package commander maps command names to runnable handlers.
//
// A Provider turns (root, name) into a Factory, the read-only definition of a
// command. A Resolver belongs to one engine: it builds one handler instance
// per command name from the factory, attaches the engine's environment to it
// and caches it. Two engines resolving the same name always get distinct
// instances, so state a handler keeps between runs never leaks across
// engines.
package commander
