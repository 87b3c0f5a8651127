/*
Package config composes configuration settings from multiple kvconfig.Source
implementations.

A Builder loads its sources in the order they were added. When more than one
source sets the same key (ignoring case), the value from the source added last
wins. This makes it possible to layer defaults from a file, overrides from the
environment and secrets from a vault.

Sources are only loaded when Build is called; nothing in this package reloads
them automatically. Hosts that want to rebuild their configuration when a file
changes can use WatchFile to be notified and call Build again.
*/
package config
