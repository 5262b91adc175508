// Package app contains the core application logic. It wires the loader
// backends, the namespace builder and the dispatcher into an App, and runs
// one command against them, decoupled from any specific entrypoint like a
// CLI.
package app
