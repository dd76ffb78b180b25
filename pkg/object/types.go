package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTag    ObjectType = "tag"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

const (
	// Tree mode constants compatible with Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TagObj preserves annotated tag payload while tracking the referenced object.
// Data stores the canonical tag bytes, where the "object" header points at the
// target hash so graph traversal can stay in object space.
type TagObj struct {
	TargetHash Hash
	Data       []byte
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Name        string
	IsDir       bool
	Mode        string
	BlobHash    Hash
	SubtreeHash Hash
}

// TreeObj holds a sorted list of tree entries.
type TreeObj struct {
	Entries []TreeEntry // sorted by Name
}

// CommitObj represents a commit pointing to a tree with metadata.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    string
	Timestamp int64
	Message   string
}

// StorageTier identifies where an object's bytes were found when the store
// resolved it: the in-memory read cache, a loose file, a pack file, or a
// chained alternate store.
type StorageTier int

const (
	TierCached StorageTier = iota
	TierLoose
	TierPacked
	TierAlternate
)

func (t StorageTier) String() string {
	switch t {
	case TierCached:
		return "cached"
	case TierLoose:
		return "loose"
	case TierPacked:
		return "packed"
	case TierAlternate:
		return "alternate"
	default:
		return "unknown"
	}
}

// ObjectInfo is the metadata returned by Store.Stat: the object's type, its
// logical size, the number of bytes its stored form occupies, and the
// storage tier it was resolved from.
type ObjectInfo struct {
	Type     ObjectType
	Size     uint64
	DiskSize uint64
	Tier     StorageTier
}
