// Package render provides server-side rendering of vdom trees.
//
// The render package converts VNode trees into HTML strings or streams:
//
//   - Proper text and attribute escaping (XSS prevention)
//   - Void element handling (br, hr, meta, etc.)
//   - Boolean attribute handling (disabled, hidden)
//   - Intent bindings emitted as data-on-* attributes
//   - Full page rendering with DOCTYPE, head, body and the socket client
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// # Full Page Rendering
//
//	err := renderer.RenderPage(w, render.PageData{
//	    Body:       shell.Render(),
//	    Title:      "Floaties",
//	    SocketPath: "/ws",
//	})
//
// # Security
//
// All text content is escaped by default. Raw HTML can be inserted using
// KindRaw nodes, but should only be used with trusted content.
package render
