/*
Package recovery classifies failures from the persistence engine and its UI
hooks, and chooses a recovery strategy for each.

Classification inspects error messages against fixed keyword sets in
priority order, with authentication ahead of validation so mixed messages
like "unauthorized request: invalid session" land on the auth bucket. Each
kind carries a fixed severity and strategy:

	kind, strategy := controller.Handle(err)
	if strategy.Action == recovery.ActionRedirect {
	    // send the user to strategy.RedirectTarget
	}

Every classified error is logged with component, timestamp and url context.
A caller-supplied reset callback runs only for recoverable kinds, and never
for errors carrying an explicit critical flag.
*/
package recovery
