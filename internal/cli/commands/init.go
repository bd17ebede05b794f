package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vathes-labs/pipedash/internal/config"
)

const starterConfig = `# pipedash configuration
server:
  port: 8610
  watch: true

target:
  type: sqlite
  path: pipeline.db
  # For a MySQL pipeline database:
  # type: mysql
  # host: localhost
  # port: 3306
  # database: my_pipeline
  # username: dj
  # password: ""   # or set PIPEDASH_TARGET_PASSWORD

tables:
  - table: subject
    title: Subjects
    editable: true
  #- table: session
  #  exclude: [session_notes]
  #  limit: 500
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter pipedash.yaml",
		Long:  `Create a commented starter configuration file in the current directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(config.ConfigFileName); err == nil {
				return fmt.Errorf("%s already exists", config.ConfigFileName)
			}
			if err := os.WriteFile(config.ConfigFileName, []byte(starterConfig), 0o644); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.ConfigFileName)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Edit the target section, then run: pipedash serve")
			return nil
		},
	}
}
