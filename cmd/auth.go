package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	"github.com/yahsan2/srs-exporter/pkg/config"
	"github.com/yahsan2/srs-exporter/pkg/credentials"
	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the tracker password in the OS keychain",
	Long: `Store, check or remove the tracker password in the OS keychain.

The password is stored per server, collection and username. Set
connection.password_source to keyring to use it.`,
}

var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the password in the OS keychain",
	Example: `  # Prompt for the password
  srs-exporter auth set

  # Read the password from standard input
  echo "$TFS_PASSWORD" | srs-exporter auth set --password-stdin`,
	RunE: runAuthSet,
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored password",
	RunE:  runAuthDelete,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a password is stored",
	RunE:  runAuthStatus,
}

var passwordStdin bool

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd, authDeleteCmd, authStatusCmd)

	authSetCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from standard input")
}

// loadConnection loads the connection settings without requiring a password
func loadConnection() (config.ConnectionConfig, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.ConnectionConfig{}, workitem.NewConfigurationError("failed to load configuration", err)
	}
	cfg.ApplyEnv()

	if cfg.Connection.Username == "" {
		return config.ConnectionConfig{}, workitem.NewConfigurationError("connection.username is required", nil)
	}
	return cfg.Connection, nil
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	conn, err := loadConnection()
	if err != nil {
		return err
	}

	password, err := readPassword(cmd, conn.Username)
	if err != nil {
		return err
	}

	if err := credentials.Store(conn, password); err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Password stored for %s\n", credentials.Account(conn))
	if conn.PasswordSource != config.PasswordSourceKeyring {
		fmt.Fprintf(cmd.OutOrStdout(), "Note: connection.password_source is '%s'; set it to 'keyring' to use the stored password.\n", conn.PasswordSource)
	}
	return nil
}

func runAuthDelete(cmd *cobra.Command, args []string) error {
	conn, err := loadConnection()
	if err != nil {
		return err
	}

	if err := credentials.Delete(conn); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "No password stored for %s\n", credentials.Account(conn))
			return nil
		}
		return fmt.Errorf("failed to delete password: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Password removed for %s\n", credentials.Account(conn))
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	conn, err := loadConnection()
	if err != nil {
		return err
	}

	_, err = credentials.Load(conn)
	switch {
	case err == nil:
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Password stored for %s\n", credentials.Account(conn))
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Fprintf(cmd.OutOrStdout(), "✗ No password stored for %s\n", credentials.Account(conn))
	default:
		return fmt.Errorf("failed to read keychain: %w", err)
	}
	return nil
}

// readPassword reads without echo from a terminal, or one line from any other input
func readPassword(cmd *cobra.Command, username string) (string, error) {
	in := cmd.InOrStdin()

	if f, ok := in.(*os.File); ok && !passwordStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s: ", username)
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return password, nil
}
