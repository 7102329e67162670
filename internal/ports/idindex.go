package ports

// EntityKind distinguishes ID namespaces in the ID index.
type EntityKind string

const (
	KindTask    EntityKind = "task"
	KindProject EntityKind = "project"
	KindPerson  EntityKind = "person"
)

// IDIndex tracks every known entity ID, including completed and archived
// ones, so freshly generated IDs never collide with historical entities.
type IDIndex interface {
	Open() error
	Close() error

	// Stale reports whether the index no longer matches the vault
	// fingerprint and needs a rebuild.
	Stale() (bool, error)
	Rebuild() error

	Contains(id string) (bool, error)
	Add(kind EntityKind, id string) error

	// GenerateUnique draws random IDs until one is unused, records it,
	// and returns it.
	GenerateUnique(kind EntityKind) (string, error)
}
