// wau is a CLI for registering AI agents with the WAU trust registry.
//
// An agent's Agent Card is discovered from its URL, reviewed, and
// submitted; the registry then runs a security audit that ends with a
// trust score.
//
// Usage:
//
//	wau discover <url>             Show the registration form for an agent
//	wau register <url>             Register and follow the audit
//	wau status <task-id>           Query an audit task
//	wau wizard                     Interactive registration
//	wau serve                      Run a local mock registry
//	wau version                    Show version info
package main

import "github.com/wau-ai/wau-cli/internal/commands"

func main() {
	commands.Execute()
}
