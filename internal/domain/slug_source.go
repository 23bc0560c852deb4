package domain

// SlugKind records where a recipe slug came from.
type SlugKind int

const (
	// SlugProvided is a slug supplied by the content API. It is trusted as unique.
	SlugProvided SlugKind = iota
	// SlugDerived is computed from the recipe name and needs the id suffix to be unique.
	SlugDerived
)

// SlugSource is a slug tagged with its provenance.
type SlugSource struct {
	Kind  SlugKind
	Value string
}

// ProvidedSlug tags s as supplied by the API.
func ProvidedSlug(s string) SlugSource {
	return SlugSource{Kind: SlugProvided, Value: s}
}

// DerivedSlug tags s as computed locally.
func DerivedSlug(s string) SlugSource {
	return SlugSource{Kind: SlugDerived, Value: s}
}

// Provided reports whether the slug came from the API.
func (s SlugSource) Provided() bool {
	return s.Kind == SlugProvided
}

func (s SlugSource) String() string {
	return s.Value
}
