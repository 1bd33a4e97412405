//go:build unix

package detect

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pkt.systems/termprof/core"
	"pkt.systems/termprof/schema"
)

func writeShell(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write shell %s: %v", name, err)
	}
	return path
}

func newTestSource(t *testing.T, shellPaths []string) *Source {
	t.Helper()
	dir := t.TempDir()
	shellsFile := filepath.Join(dir, "shells")
	content := "# /etc/shells: valid login shells\n\n"
	for _, p := range shellPaths {
		content += p + "\n"
	}
	if err := os.WriteFile(shellsFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write shells file: %v", err)
	}
	source := New(nil)
	source.shellsPath = shellsFile
	return source
}

func TestParseEtcShells(t *testing.T) {
	data := []byte("# comment\n\n/bin/bash\n  /bin/zsh  \n#/bin/ignored\n")
	paths := ParseEtcShells(data)
	if len(paths) != 2 || paths[0] != "/bin/bash" || paths[1] != "/bin/zsh" {
		t.Fatalf("unexpected paths: %+v", paths)
	}
}

func TestProfilesFromShellPathsDedupesByBasename(t *testing.T) {
	profiles := ProfilesFromShellPaths([]string{"/bin/bash", "/usr/bin/bash", "/bin/zsh"})
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %+v", profiles)
	}
	if profiles[0].Name != "bash" || profiles[0].Path != "/bin/bash" {
		t.Fatalf("expected first bash path kept, got %+v", profiles[0])
	}
	if !profiles[0].AutoDetected {
		t.Fatalf("expected auto-detected flag")
	}
}

func TestDetectProfilesFromEtcShells(t *testing.T) {
	dir := t.TempDir()
	bash := writeShell(t, dir, "bash")
	zsh := writeShell(t, dir, "zsh")
	source := newTestSource(t, []string{bash, zsh, filepath.Join(dir, "missing")})

	profiles, err := source.DetectProfiles(context.Background(), core.DetectRequest{
		Platform:           schema.PlatformLinux,
		DefaultProfileName: "zsh",
		IncludeDetected:    true,
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %+v", profiles)
	}
	if profiles[0].Name != "bash" || profiles[1].Name != "zsh" {
		t.Fatalf("expected sorted names, got %+v", profiles)
	}
	if profiles[0].Default || !profiles[1].Default {
		t.Fatalf("expected default flag on zsh only: %+v", profiles)
	}
}

func TestConfiguredProfileOverridesDetection(t *testing.T) {
	dir := t.TempDir()
	bash := writeShell(t, dir, "bash")
	source := newTestSource(t, []string{bash})

	configured := map[string]*schema.ProfileConfig{
		"bash": {Path: bash, Args: []string{"-l"}, Icon: "terminal-bash"},
	}
	profiles, err := source.DetectProfiles(context.Background(), core.DetectRequest{
		Platform:           schema.PlatformLinux,
		ConfiguredProfiles: configured,
		IncludeDetected:    true,
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected configured entry to shadow detection, got %+v", profiles)
	}
	p := profiles[0]
	if p.AutoDetected || p.Icon != "terminal-bash" || len(p.Args) != 1 {
		t.Fatalf("expected configured profile, got %+v", p)
	}
}

func TestNulledTitleExcludesDetectedShell(t *testing.T) {
	dir := t.TempDir()
	bash := writeShell(t, dir, "bash")
	fish := writeShell(t, dir, "fish")
	source := newTestSource(t, []string{bash, fish})

	configured := map[string]*schema.ProfileConfig{"fish": nil}
	profiles, err := source.DetectProfiles(context.Background(), core.DetectRequest{
		Platform:           schema.PlatformLinux,
		ConfiguredProfiles: configured,
		IncludeDetected:    true,
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(profiles) != 1 || profiles[0].Name != "bash" {
		t.Fatalf("expected fish excluded, got %+v", profiles)
	}
}

func TestContributedEntriesAreSkipped(t *testing.T) {
	source := newTestSource(t, nil)
	configured := map[string]*schema.ProfileConfig{
		"remote-shell": {Extension: "my.ext", Provider: "p1"},
	}
	profiles, err := source.DetectProfiles(context.Background(), core.DetectRequest{
		Platform:           schema.PlatformLinux,
		ConfiguredProfiles: configured,
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(profiles) != 0 {
		t.Fatalf("expected contributed descriptor skipped, got %+v", profiles)
	}
}

func TestMissingEtcShellsFallsBackToPathProbe(t *testing.T) {
	dir := t.TempDir()
	bash := writeShell(t, dir, "bash")
	source := New(nil)
	source.shellsPath = filepath.Join(dir, "no-such-file")
	source.lookPath = func(name string) (string, error) {
		if name == "bash" {
			return bash, nil
		}
		return "", os.ErrNotExist
	}

	profiles, err := source.DetectProfiles(context.Background(), core.DetectRequest{
		Platform:        schema.PlatformLinux,
		IncludeDetected: true,
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(profiles) != 1 || profiles[0].Name != "bash" {
		t.Fatalf("expected PATH fallback profile, got %+v", profiles)
	}
}

func TestRelativeConfiguredPathResolvesViaLookPath(t *testing.T) {
	dir := t.TempDir()
	bash := writeShell(t, dir, "bash")
	source := newTestSource(t, nil)
	source.lookPath = func(name string) (string, error) {
		if name == "bash" {
			return bash, nil
		}
		return "", os.ErrNotExist
	}

	configured := map[string]*schema.ProfileConfig{"login bash": {Path: "bash"}}
	profiles, err := source.DetectProfiles(context.Background(), core.DetectRequest{
		Platform:           schema.PlatformLinux,
		ConfiguredProfiles: configured,
	})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(profiles) != 1 || profiles[0].Path != bash {
		t.Fatalf("expected resolved path, got %+v", profiles)
	}
}
