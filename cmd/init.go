package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yahsan2/srs-exporter/pkg/config"
	"github.com/yahsan2/srs-exporter/pkg/credentials"
	initpkg "github.com/yahsan2/srs-exporter/pkg/init"
	"github.com/yahsan2/srs-exporter/pkg/tfs"
	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize srs-exporter configuration",
	Long: `Initialize a new srs-exporter configuration file (.srs-exporter.yml) in the current directory.

This command will:
- Create a .srs-exporter.yml configuration file
- Set up the collection, project and account settings
- Optionally check that the project can be queried`,
	Example: `  # Interactive initialization
  srs-exporter init

  # Non-interactive initialization
  srs-exporter init --endpoint https://tfs.example.com/tfs --project Fabrikam --username DOMAIN\\me --interactive=false

  # Check the connection after writing the file
  srs-exporter init --verify`,
	RunE: runInit,
}

var (
	initEndpoint       string
	initCollection     string
	initProject        string
	initUsername       string
	initPasswordSource string
	initTemplate       string
	initInteractive    bool
	initVerify         bool
	initForce          bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initEndpoint, "endpoint", "", "Server URL, e.g. https://tfs.example.com/tfs")
	initCmd.Flags().StringVar(&initCollection, "collection", "", "Collection name")
	initCmd.Flags().StringVar(&initProject, "project", "", "Project name")
	initCmd.Flags().StringVar(&initUsername, "username", "", "Account used to sign in")
	initCmd.Flags().StringVar(&initPasswordSource, "password-source", "", "Where the password comes from: {config|env|keyring}")
	initCmd.Flags().StringVar(&initTemplate, "template", "", "SRS template document")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", true, "Interactive mode")
	initCmd.Flags().BoolVar(&initVerify, "verify", false, "Query the project after writing the configuration")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	prompt := initpkg.NewInteractivePrompt(cmd.InOrStdin(), out)

	path, exists, err := initTarget()
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if exists && !initForce {
		if !initInteractive {
			return initpkg.NewValidationError(fmt.Sprintf("%s already exists, use --force to overwrite it", path))
		}
		if !prompt.ConfirmOverwrite(path) {
			fmt.Fprintln(out, "Initialization cancelled.")
			return nil
		}
		// Start from the existing values
		if existing, err := config.LoadFrom(path); err == nil {
			cfg = existing
		} else {
			fmt.Fprintf(out, "Warning: Could not load existing config, creating new one: %v\n", err)
		}
	}

	applyInitFlags(cfg)
	if initInteractive {
		promptInitValues(prompt, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return initpkg.NewConfigError("invalid settings", err)
	}
	if err := cfg.Save(path); err != nil {
		return initpkg.NewFileSystemError("failed to write configuration", err)
	}
	fmt.Fprintf(out, "✓ Configuration written to %s\n", path)

	if cfg.Connection.PasswordSource == config.PasswordSourceKeyring {
		fmt.Fprintln(out, "Run 'srs-exporter auth set' to store the password in the OS keychain.")
	}

	if initVerify {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		count, err := verifyConnection(ctx, cfg)
		if err != nil {
			initpkg.HandleInitError(cmd.ErrOrStderr(), err)
			return err
		}
		fmt.Fprintf(out, "✓ Connected: %d %s work items in %s\n", count, cfg.Query.WorkItemType, cfg.Connection.Project)
	}

	return nil
}

// initTarget returns the file init writes and whether it already exists. Without
// --config an existing file in the current or a parent directory is updated.
func initTarget() (string, bool, error) {
	if configPath != "" {
		_, err := os.Stat(configPath)
		return configPath, err == nil, nil
	}
	if config.Exists() {
		return config.FindConfigPath(), true, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", false, initpkg.NewFileSystemError("failed to get working directory", err)
	}
	return filepath.Join(wd, config.ConfigFileName), false, nil
}

func applyInitFlags(cfg *config.Config) {
	if initEndpoint != "" {
		cfg.Connection.Endpoint = initEndpoint
	}
	if initCollection != "" {
		cfg.Connection.Collection = initCollection
	}
	if initProject != "" {
		cfg.Connection.Project = initProject
	}
	if initUsername != "" {
		cfg.Connection.Username = initUsername
	}
	if initPasswordSource != "" {
		cfg.Connection.PasswordSource = strings.ToLower(initPasswordSource)
	}
	if initTemplate != "" {
		cfg.Template.Path = initTemplate
	}
}

func promptInitValues(prompt *initpkg.InteractivePrompt, cfg *config.Config) {
	conn := &cfg.Connection
	if initEndpoint == "" {
		conn.Endpoint = prompt.GetStringInput("Server URL", conn.Endpoint)
	}
	if initCollection == "" {
		conn.Collection = prompt.GetStringInput("Collection", conn.Collection)
	}
	if initProject == "" {
		conn.Project = prompt.GetStringInput("Project", conn.Project)
	}
	if initUsername == "" {
		conn.Username = prompt.GetStringInput("Username", conn.Username)
	}
	if initPasswordSource == "" {
		conn.PasswordSource = prompt.SelectOption("Password source",
			[]string{config.PasswordSourceKeyring, config.PasswordSourceEnv, config.PasswordSourceConfig},
			conn.PasswordSource)
		if conn.PasswordSource == config.PasswordSourceConfig && conn.Password == "" {
			conn.Password = prompt.GetStringInput("Password", "")
		}
	}
	if initTemplate == "" {
		cfg.Template.Path = prompt.GetStringInput("SRS template", cfg.Template.Path)
	}
}

func verifyConnection(ctx context.Context, cfg *config.Config) (int, error) {
	password, err := credentials.Resolve(cfg.Connection)
	if err != nil {
		return 0, initpkg.NewTrackerError("failed to resolve password", err)
	}

	builder := workitem.NewQueryBuilder(cfg.Connection.Project, workitem.OrderByStackRank)
	if cfg.Query.WorkItemType != "" {
		builder.WorkItemType = cfg.Query.WorkItemType
	}
	query, err := builder.Build()
	if err != nil {
		return 0, initpkg.NewConfigError("invalid project", err)
	}

	connector := tfs.NewConnector(tfs.Options{Connection: cfg.Connection, Password: password})
	return initpkg.NewConnectionChecker(connector).CountMatches(ctx, query)
}
