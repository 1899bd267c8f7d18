// Package core defines the shared primitives of the recipeflow pipeline:
// role-based content with polymorphic parts, immutable run events for
// observability, the lightweight ToolContext handed to tools, and the
// schema validation error type shared by the plan and client layers.
package core
