// Package vdom provides the virtual DOM the application shell renders into.
//
// # Core Types
//
// VNode is the fundamental building block representing elements, text,
// fragments and raw HTML. Props holds attributes and intent bindings.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Nav(Class("navbar"),
//	    A(Href("/posts"), Text("Posts")),
//	    Button(OnClick("toggle"), Text("Menu")),
//	)
//
// # Intents
//
// Event handlers are not closures. OnClick records an intent name and an
// optional argument; the renderer emits them as data attributes and the
// browser client posts them back over the socket, where the session's
// event loop applies them.
package vdom
