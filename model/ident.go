package model

// Ident is a strong string type for qualified identifiers (tool names,
// provider tags) so call sites cannot accidentally mix them with free-form
// strings.
type Ident string

// ProviderTag identifies a concrete provider kind (e.g. "claude-code").
// Session registries are partitioned by ProviderTag: two providers never
// share node_id -> session_id bindings.
type ProviderTag string
