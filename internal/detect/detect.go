// Package detect implements local terminal profile discovery: user
// configured entries plus auto-detected shells from /etc/shells (or a
// well-known table on Windows).
package detect

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"pkt.systems/pslog"
	"pkt.systems/termprof/core"
	"pkt.systems/termprof/schema"
)

const etcShellsPath = "/etc/shells"

// fallbackShells are probed on PATH when /etc/shells is unavailable.
var fallbackShells = []string{"bash", "zsh", "fish", "sh", "ksh", "tmux", "pwsh"}

// Source implements core.ProfileSource against the local host.
type Source struct {
	log        pslog.Logger
	shellsPath string
	lookPath   func(string) (string, error)
}

// New constructs a local profile source.
func New(logger pslog.Logger) *Source {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Source{
		log:        logger,
		shellsPath: etcShellsPath,
		lookPath:   exec.LookPath,
	}
}

// DetectProfiles builds the launchable profile list from configured
// entries and, when requested, auto-detected shells.
func (s *Source) DetectProfiles(ctx context.Context, req core.DetectRequest) ([]schema.Profile, error) {
	configured := s.fromConfigured(req)
	var detected []schema.Profile
	if req.IncludeDetected {
		var err error
		detected, err = s.detectShells(req.Platform)
		if err != nil {
			return nil, err
		}
	}
	profiles := Finalize(configured, detected, req)
	s.log.Debug("local detection pass", "profiles", len(profiles))
	return profiles, nil
}

// Finalize merges configured and detected profiles: configured entries
// shadow detected shells of the same name, titles explicitly nulled in
// configuration exclude detected shells, the default flag follows the
// requested default name, and the result is sorted by name.
func Finalize(configured, detected []schema.Profile, req core.DetectRequest) []schema.Profile {
	profiles := append([]schema.Profile(nil), configured...)
	taken := make(map[schema.ProfileName]struct{}, len(profiles))
	for _, p := range profiles {
		taken[p.Name] = struct{}{}
	}
	for _, p := range detected {
		if _, ok := taken[p.Name]; ok {
			continue
		}
		if entry, present := req.ConfiguredProfiles[string(p.Name)]; present && entry == nil {
			// Explicitly nulled out by the user.
			continue
		}
		profiles = append(profiles, p)
	}
	for i := range profiles {
		profiles[i].Default = profiles[i].Name == req.DefaultProfileName && req.DefaultProfileName != ""
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles
}

func (s *Source) fromConfigured(req core.DetectRequest) []schema.Profile {
	profiles := make([]schema.Profile, 0, len(req.ConfiguredProfiles))
	for title, entry := range req.ConfiguredProfiles {
		if entry == nil {
			continue
		}
		if entry.Extension != "" {
			// Contributed descriptors resolve through their provider,
			// not through the detection path.
			continue
		}
		path := entry.Path
		if path == "" {
			continue
		}
		if !filepath.IsAbs(path) {
			resolved, err := s.lookPath(path)
			if err != nil {
				s.log.Debug("configured profile not on PATH", "title", title, "path", path)
				continue
			}
			path = resolved
		} else if !canExecute(path) {
			s.log.Debug("configured profile not executable", "title", title, "path", path)
			continue
		}
		profiles = append(profiles, schema.Profile{
			Name:         schema.ProfileName(title),
			Path:         path,
			Args:         append([]string(nil), entry.Args...),
			Icon:         entry.Icon,
			Color:        entry.Color,
			OverrideName: entry.OverrideName,
		})
	}
	return profiles
}

func (s *Source) detectShells(platform schema.PlatformKey) ([]schema.Profile, error) {
	if platform == schema.PlatformWindows {
		return s.windowsProfiles(), nil
	}
	data, err := os.ReadFile(s.shellsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return s.probeFallbackShells(), nil
	}
	paths := ParseEtcShells(data)
	usable := paths[:0]
	for _, path := range paths {
		if canExecute(path) {
			usable = append(usable, path)
		}
	}
	return ProfilesFromShellPaths(usable), nil
}

func (s *Source) probeFallbackShells() []schema.Profile {
	var paths []string
	for _, name := range fallbackShells {
		if resolved, err := s.lookPath(name); err == nil {
			paths = append(paths, resolved)
		}
	}
	return ProfilesFromShellPaths(paths)
}

func (s *Source) windowsProfiles() []schema.Profile {
	systemRoot := os.Getenv("SystemRoot")
	if systemRoot == "" {
		systemRoot = `C:\Windows`
	}
	candidates := []schema.Profile{
		{Name: "PowerShell", Path: filepath.Join(systemRoot, "System32", "WindowsPowerShell", "v1.0", "powershell.exe"), Icon: "terminal-powershell"},
		{Name: "Command Prompt", Path: filepath.Join(systemRoot, "System32", "cmd.exe"), Icon: "terminal-cmd"},
	}
	if resolved, err := s.lookPath("pwsh.exe"); err == nil {
		candidates = append(candidates, schema.Profile{Name: "PowerShell Core", Path: resolved, Icon: "terminal-powershell"})
	}
	if programFiles := os.Getenv("ProgramFiles"); programFiles != "" {
		candidates = append(candidates, schema.Profile{
			Name: "Git Bash",
			Path: filepath.Join(programFiles, "Git", "bin", "bash.exe"),
			Args: []string{"--login"},
			Icon: "terminal-bash",
		})
	}
	profiles := make([]schema.Profile, 0, len(candidates))
	for _, p := range candidates {
		if !canExecute(p.Path) {
			continue
		}
		p.AutoDetected = true
		profiles = append(profiles, p)
	}
	return profiles
}

// ParseEtcShells extracts shell paths from /etc/shells content,
// skipping comments and blank lines.
func ParseEtcShells(data []byte) []string {
	var paths []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}

// ProfilesFromShellPaths maps shell paths to auto-detected profiles,
// keeping the first path seen for each basename.
func ProfilesFromShellPaths(paths []string) []schema.Profile {
	seen := make(map[string]struct{}, len(paths))
	profiles := make([]schema.Profile, 0, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		profiles = append(profiles, schema.Profile{
			Name:         schema.ProfileName(name),
			Path:         path,
			AutoDetected: true,
		})
	}
	return profiles
}
