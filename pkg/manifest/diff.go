package manifest

// ComponentsToUpdate compares an installed channel against its
// upstream counterpart and returns the components that need work, in
// upstream order: components new upstream plus components whose
// definition changed. Components that only exist locally are left
// alone, uninstalling them is not the updater's job.
//
// A nil probe limits change detection to manifest structure; with a
// probe, branch-tip and local-path components are also checked against
// their live sources.
func ComponentsToUpdate(installed, upstream *Channel, probe RevisionProbe) []Component {
	var out []Component
	for i := range upstream.Components {
		next := &upstream.Components[i]
		current := installed.Component(next.Name)
		if current == nil || !current.UpToDate(next, probe) {
			out = append(out, next.Clone())
		}
	}
	return out
}
