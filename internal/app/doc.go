// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle: discovering
// graph description files, loading them through the format loaders, resolving
// every graph concurrently and writing the report. It is decoupled from any
// specific entrypoint like a CLI.
package app
