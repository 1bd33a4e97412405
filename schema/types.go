package schema

// ProfileName is the user-facing name of a terminal profile.
type ProfileName string

// ExtensionID identifies an extension contributing profiles.
type ExtensionID string

// ProviderID identifies a profile provider within an extension.
type ProviderID string

// PlatformKey selects the configuration namespace for an OS class.
type PlatformKey string

const (
	// PlatformWindows namespaces configuration for Windows hosts.
	PlatformWindows PlatformKey = "windows"
	// PlatformOSX namespaces configuration for macOS hosts.
	PlatformOSX PlatformKey = "osx"
	// PlatformLinux namespaces configuration for Linux hosts.
	PlatformLinux PlatformKey = "linux"
)

// PlatformKeyForOS maps a GOOS value to its configuration namespace.
func PlatformKeyForOS(goos string) PlatformKey {
	switch goos {
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformOSX
	default:
		return PlatformLinux
	}
}

// ProfileIcon names an icon shown next to a profile.
type ProfileIcon string

// ProfileColor names a theme color applied to a profile.
type ProfileColor string

// Profile is a concrete, launchable terminal configuration.
type Profile struct {
	Name         ProfileName
	Path         string
	Args         []string
	Icon         ProfileIcon
	Color        ProfileColor
	AutoDetected bool
	Default      bool
	// OverrideName replaces the detected title when non-empty.
	OverrideName ProfileName
}

// ContributedProfile is an extension-declared profile descriptor. It
// describes a capability to create a profile on demand, not a
// ready-to-use launch configuration.
type ContributedProfile struct {
	Extension ExtensionID
	Provider  ProviderID
	Title     ProfileName
	Icon      ProfileIcon
	Color     ProfileColor
}

// ProfileConfig is a user-configured profile entry. A nil entry in a
// profile map removes a detected or contributed profile of the same
// name from the available set.
type ProfileConfig struct {
	Path         string       `yaml:"path,omitempty" json:"path,omitempty"`
	Args         []string     `yaml:"args,omitempty" json:"args,omitempty"`
	Icon         ProfileIcon  `yaml:"icon,omitempty" json:"icon,omitempty"`
	Color        ProfileColor `yaml:"color,omitempty" json:"color,omitempty"`
	OverrideName ProfileName  `yaml:"overrideName,omitempty" json:"overrideName,omitempty"`
	// Extension and Provider are set on entries persisted for
	// contributed profiles; such entries are resolved on demand and
	// are not launchable configurations themselves.
	Extension ExtensionID `yaml:"extension,omitempty" json:"extension,omitempty"`
	Provider  ProviderID  `yaml:"provider,omitempty" json:"provider,omitempty"`
}

// LaunchConfig captures a request to launch a terminal session.
type LaunchConfig struct {
	Executable string
	Args       []string
	// ParentTerminalID correlates launches triggered from inside
	// another terminal's profile resolution. Its presence disables
	// contributed default lookup to prevent recursion.
	ParentTerminalID string
}

// RemoteEnvironment describes the connected remote host.
type RemoteEnvironment struct {
	OS PlatformKey
}
