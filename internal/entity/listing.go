package entity

// Outcome is the decision taken for one directory during listing synthesis.
type Outcome int

const (
	// OutcomeSkipped means the directory gets no listing and had none to remove.
	OutcomeSkipped Outcome = iota
	// OutcomeRemoved means a stale listing was (or must be) deleted.
	OutcomeRemoved
	// OutcomeRendered means a listing page was (or must be) written.
	OutcomeRendered
)

func (o Outcome) String() string {
	return [...]string{"Skipped", "Removed", "Rendered"}[o]
}

// DirState is everything the listing decision for one directory depends on.
type DirState struct {
	IsRoot       bool // Directory is the repository root
	HasArchive   bool // Some archive exists anywhere in the subtree
	HasSpotlight bool // A spotlight-package archive exists anywhere in the tree
	HasListing   bool // A listing page currently exists in the directory
}

// Decide maps a directory's state to its listing outcome. Pure; the walker
// applies the filesystem side effects.
func Decide(s DirState) Outcome {
	if !s.IsRoot && !s.HasArchive {
		if s.HasListing {
			return OutcomeRemoved
		}

		return OutcomeSkipped
	}

	if s.IsRoot && !s.HasSpotlight {
		if s.HasListing {
			return OutcomeRemoved
		}

		return OutcomeSkipped
	}

	return OutcomeRendered
}

// ListingEntry is one link on a listing page.
type ListingEntry struct {
	Name  string // Display name; directories carry a trailing slash
	Href  string // Relative link target
	IsDir bool
}
