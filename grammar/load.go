package grammar

// Load parses src as either dialect, auto-detecting via DetectDialect
// unless dialect is explicitly "peacock" or "gramatron".
func Load(path string, src []byte, dialect string) (*Grammar, error) {
	if dialect == "" {
		dialect = DetectDialect(src)
	}
	if dialect == "gramatron" {
		return LoadGramatron(path, src)
	}
	return LoadPeacock(path, src)
}
