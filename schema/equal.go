package schema

// Equal reports structural equality with another profile. Args are
// compared element-wise in order; all other fields by value.
func (p Profile) Equal(other Profile) bool {
	if p.Name != other.Name ||
		p.Path != other.Path ||
		p.Icon != other.Icon ||
		p.Color != other.Color ||
		p.AutoDetected != other.AutoDetected ||
		p.Default != other.Default ||
		p.OverrideName != other.OverrideName {
		return false
	}
	if len(p.Args) != len(other.Args) {
		return false
	}
	for i := range p.Args {
		if p.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

// Equal reports structural equality with another contributed profile.
func (c ContributedProfile) Equal(other ContributedProfile) bool {
	return c.Extension == other.Extension &&
		c.Provider == other.Provider &&
		c.Title == other.Title &&
		c.Icon == other.Icon &&
		c.Color == other.Color
}

// ProfilesEqual reports whether two profile lists are structurally
// equal. Object identity of the slices is irrelevant.
func ProfilesEqual(a, b []Profile) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// ContributedProfilesEqual reports whether two contributed-profile
// lists are structurally equal.
func ContributedProfilesEqual(a, b []ContributedProfile) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// IconsEqual reports whether two icon sets carry the same icons,
// ignoring order.
func IconsEqual(a, b []ProfileIcon) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[ProfileIcon]int, len(a))
	for _, icon := range a {
		seen[icon]++
	}
	for _, icon := range b {
		seen[icon]--
		if seen[icon] < 0 {
			return false
		}
	}
	return true
}

// ColorsEqual reports whether two color sets carry the same colors,
// ignoring order.
func ColorsEqual(a, b []ProfileColor) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[ProfileColor]int, len(a))
	for _, color := range a {
		seen[color]++
	}
	for _, color := range b {
		seen[color]--
		if seen[color] < 0 {
			return false
		}
	}
	return true
}
