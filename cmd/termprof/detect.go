package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/termprof/core"
	"pkt.systems/termprof/internal/appconfig"
	"pkt.systems/termprof/internal/confstore"
	"pkt.systems/termprof/internal/detect"
	"pkt.systems/termprof/internal/remotedetect"
	"pkt.systems/termprof/schema"
)

func newDetectCmd() *cobra.Command {
	var cfgPath string
	var asJSON bool
	var remote bool
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run a one-shot profile detection pass and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			store, err := confstore.New(cfg.ProfilesPath, logger)
			if err != nil {
				return err
			}

			platform := schema.PlatformKeyForOS(runtime.GOOS)
			var source core.ProfileSource = detect.New(logger)
			if remote {
				if cfg.Remote.Addr == "" {
					return fmt.Errorf("remote detection requested but remote.addr is not configured")
				}
				client, err := remotedetect.New(remoteConfig(cfg.Remote), logger)
				if err != nil {
					return err
				}
				env, err := client.Environment(cmd.Context())
				if err != nil {
					return err
				}
				platform = env.OS
				source = client
			}

			configured, err := store.Profiles(platform)
			if err != nil {
				return err
			}
			defaultName, err := store.DefaultProfileName(platform)
			if err != nil {
				return err
			}
			profiles, err := source.DetectProfiles(cmd.Context(), core.DetectRequest{
				Platform:           platform,
				ConfiguredProfiles: configured,
				DefaultProfileName: defaultName,
				IncludeDetected:    cfg.Service.IncludeDetected,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(map[string]any{
					"platform": platform,
					"profiles": profiles,
				})
			}
			fmt.Fprintf(out, "platform: %s\n", platform)
			for _, profile := range profiles {
				marker := " "
				if profile.Default {
					marker = "*"
				}
				line := fmt.Sprintf("%s %s\t%s", marker, profile.Name, profile.Path)
				if len(profile.Args) > 0 {
					line += " " + strings.Join(profile.Args, " ")
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print profiles as JSON")
	cmd.Flags().BoolVar(&remote, "remote", false, "detect against the configured remote host")
	return cmd
}
