// Package server serves named live trees over HTTP.
//
// Each tree is created from an HTML body and then reconciled in place by
// later requests. Reconciles against one tree are serialized; different
// trees proceed in parallel. Watchers connected over WebSocket receive the
// mutation journal of every reconcile.
//
// Routes:
//
//	POST   /trees              create a tree from the HTML body
//	GET    /trees              list trees
//	GET    /trees/{id}         the tree's HTML
//	PUT    /trees/{id}         reconcile the HTML body into the tree
//	DELETE /trees/{id}         drop the tree and its snapshot
//	GET    /trees/{id}/watch   WebSocket stream of mutation events
//	GET    /metrics            Prometheus metrics, when a gatherer is set
//
// Trees are persisted to a snapshot.Store after every change and can be
// restored at startup with Restore.
package server
