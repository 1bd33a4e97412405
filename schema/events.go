package schema

// ProfilesChangedEvent carries the full new snapshot after a refresh
// committed a change. It fires only when the available or contributed
// list actually changed.
type ProfilesChangedEvent struct {
	Platform       PlatformKey
	Profiles       []Profile
	Contributed    []ContributedProfile
	DefaultProfile ProfileName
}
