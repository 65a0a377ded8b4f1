// Package render serializes dom trees to HTML.
//
// The renderer writes attributes in their stored order, escapes text and
// attribute values, omits end tags for void elements and leaves the content
// of raw text elements such as script and style unescaped.
//
// # Basic Usage
//
//	html, err := render.NewRenderer(render.RendererConfig{}).RenderToString(node)
//
// or, when errors cannot occur:
//
//	s := render.HTML(node)
//
// # Live State
//
// With RendererConfig.State set, form controls are written with their
// current Props instead of their attributes: an input's typed value, a
// checkbox's checked flag and an option's selected flag. The result is the
// markup that would reproduce the tree as the user currently sees it.
//
// # Pretty Printing
//
// Pretty mode indents block elements and drops whitespace-only text. It is
// meant for the CLI and debugging, not for output that is parsed again.
package render
