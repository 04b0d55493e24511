package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/pranavnadakkal/portfolio/internal/cfg"
	"github.com/pranavnadakkal/portfolio/internal/profile"
)

// newValidateCmd checks a profile document offline with the same rules the
// server applies when loading it.
func newValidateCmd(conf *cfg.App) *cobra.Command {
	var minSkills int
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a profile document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := url.Parse(conf.BaseURL)
			if err != nil {
				return fmt.Errorf("invalid --base-url: %w", err)
			}
			src := profile.FileSource{
				Path: args[0],
				Validation: profile.ValidationOptions{
					StrictLinks: conf.StrictLinks,
					BaseURL:     base,
					MinSkills:   minSkills,
				},
			}
			snap, err := src.Load(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (name=%q sha256=%s skills=%d projects=%d)\n",
				args[0], snap.Profile.Name, snap.Meta.SHA256, countSkills(snap.Profile), len(snap.Profile.Projects))
			return err
		},
	}
	cmd.Flags().IntVar(&minSkills, "min-skills", 0, "require at least this many skills")
	return cmd
}

func countSkills(p *profile.Profile) int {
	n := 0
	for _, g := range p.Skills {
		n += len(g.Items)
	}
	return n
}
