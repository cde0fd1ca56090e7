// handlers/handlers.go
package handlers

import (
	"grc/access"
	"grc/ai"
	"grc/events"
	"grc/runner"
	"grc/store"
)

// Package-level collaborators, set once from main (or from tests)
// before the router is built.
var (
	st          store.Store
	engine      *events.Engine
	scanner     *events.Scanner
	synthesizer *ai.Synthesizer
	jobs        *runner.Runner
	gate        *access.RoleGate
)

type Deps struct {
	Store       store.Store
	Engine      *events.Engine
	Scanner     *events.Scanner
	Synthesizer *ai.Synthesizer
	Runner      *runner.Runner
	Gate        *access.RoleGate
}

func Init(d Deps) {
	st = d.Store
	engine = d.Engine
	scanner = d.Scanner
	synthesizer = d.Synthesizer
	jobs = d.Runner
	gate = d.Gate
}
