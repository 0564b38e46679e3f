package budget

// ExtraEntryPoint is the classifier's view of a declared global script or
// style: the bundle it resolves to and whether the author wants it lazy.
type ExtraEntryPoint struct {
	BundleName string
	Lazy       bool
}

// Classify corrects the initial flags reported by the compiler. Every
// artifact named by a lazy extra entry point is marked non-initial along
// with its files; all other artifacts are left as reported. g is not
// modified.
func Classify(g OutputGraph, entries []ExtraEntryPoint) OutputGraph {
	lazy := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.BundleName == "" {
			continue
		}
		// A bundle shared by an eager entry stays eager.
		if prev, seen := lazy[e.BundleName]; seen {
			lazy[e.BundleName] = prev && e.Lazy
			continue
		}
		lazy[e.BundleName] = e.Lazy
	}

	out := g.clone()
	for i := range out.Artifacts {
		a := &out.Artifacts[i]
		if !lazy[a.Name] {
			continue
		}
		a.Initial = false
		for j := range a.Files {
			a.Files[j].Initial = false
		}
	}
	return out
}
