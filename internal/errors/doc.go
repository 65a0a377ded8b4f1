// Package errors provides structured, coded errors for morph.
//
// Every failure surfaced by the reconciler, the parser collaborators, the
// snapshot stores and the tree server is an *Error carrying a registered code:
//
//   - M0xx: reconcile errors (nil nodes, aborted hooks, invalid markup)
//   - C0xx: configuration errors
//   - S0xx: snapshot storage errors
//   - H0xx: tree server errors
//
// Errors wrap their cause, so errors.Is and errors.As see through them:
//
//	err := errors.New("M002").
//	    WithDetail("OnBeforeElementUpdated failed on <form>").
//	    Wrap(cause)
//
//	fmt.Print(err.Format())
//	// ERROR M002: Hook aborted reconcile
//	//
//	//   OnBeforeElementUpdated failed on <form>
//	//
//	//   Caused by: ...
package errors
