package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/termprof/internal/appconfig"
	"pkt.systems/termprof/internal/confstore"
	"pkt.systems/termprof/schema"
)

func newDefaultCmd() *cobra.Command {
	var cfgPath string
	var platformFlag string
	cmd := &cobra.Command{
		Use:   "default [profile]",
		Short: "Show or set the default profile for a platform",
		Args:  cobra.MaximumNArgs(1),
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
			platform, err := resolvePlatform(platformFlag)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				name, err := store.DefaultProfileName(platform)
				if err != nil {
					return err
				}
				if name == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "no default profile set for %s\n", platform)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", name)
				return nil
			}

			name := schema.ProfileName(args[0])
			if err := store.SetDefaultProfileName(platform, name); err != nil {
				return err
			}
			logger.Info("default profile updated", "platform", platform, "profile", name)
			fmt.Fprintf(cmd.OutOrStdout(), "default profile for %s set to %s\n", platform, name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&platformFlag, "platform", "", "platform key (windows, osx, linux); defaults to the current platform")
	return cmd
}

func resolvePlatform(flag string) (schema.PlatformKey, error) {
	if flag == "" {
		return schema.PlatformKeyForOS(runtime.GOOS), nil
	}
	switch schema.PlatformKey(flag) {
	case schema.PlatformWindows, schema.PlatformOSX, schema.PlatformLinux:
		return schema.PlatformKey(flag), nil
	}
	return "", fmt.Errorf("unknown platform %q (expected windows, osx, or linux)", flag)
}
