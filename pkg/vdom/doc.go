// Package vdom implements the virtual DOM the application renders into:
// tree construction through element constructors, hydration IDs for
// addressing rendered nodes, and diffing between renders into minimal
// patch operations applied by the thin client.
package vdom
