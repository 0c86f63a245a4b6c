// Package vdom defines the virtual DOM tree that widget components
// render into, the keyed reconciliation pass over sibling lists, and
// the JSON wire form consumed by remote view layers.
//
// Nodes are a tagged variant: elements, text, and references to
// component instances. Component instances themselves live in
// pkg/widget and participate here through the Component interface,
// which keeps ownership strictly top-down: nodes own their children
// and nothing points back up the tree.
package vdom
