package cache

// Key builds the backend key for an identifier within a namespace.
// The identifier is used verbatim; no normalization is applied, so two
// identifiers naming the same resource through different spellings are
// distinct cache entries.
//
// Example:
//
//	partfetch:https://example.com/model.bin.part0
func Key(namespace, identifier string) string {
	if namespace == "" {
		return identifier
	}
	return namespace + ":" + identifier
}
