// Package bridge implements the host framework's template backend
// contract on top of a pluggable compiler environment. It resolves layered
// configuration into an immutable engine config, installs extension points
// (filters, tests, globals, constants) with dotted-reference resolution,
// decides template-name ownership through an extension or regex rule, and
// assembles the per-render context (request, lazy CSRF token, context
// processor contributions) before dispatching to the compiled template.
package bridge
