package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"fic-go/internal/app"
	"fic-go/internal/config"
	"fic-go/internal/encryption"
	"fic-go/internal/fic"
	"fic-go/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Add", "VerifyAll").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase prompts on stderr and reads without echo.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

func statusGlyph(s model.Status) string {
	switch s {
	case model.StatusVerified:
		return "ok"
	case model.StatusTampered:
		return "TAMPERED"
	case model.StatusMissing:
		return "MISSING"
	default:
		return "?"
	}
}

var rootCmd = &cobra.Command{
	Use:   "fic",
	Short: "File integrity checker",
	Long:  "fic records cryptographic fingerprints of files and detects later modification.",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:   %s\n", cfg.HostID)
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Database:  %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage archive encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate an archive encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
		if err != nil {
			return fmt.Errorf("creating encryptor: %w", err)
		}
		if enc.IsConfigured() {
			return fmt.Errorf("encryption keys already exist")
		}

		pass, err := readPassphrase("Passphrase for private key: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := enc.Setup(pass); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}
		fmt.Println("Encryption keys generated.")
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add PATH",
	Short: "Track a file, recording its current digest",
	Long: `Track a file by recording a digest of its current content.

Adding a path that is already tracked re-baselines it: the record is
replaced with a fresh digest, the check count resets to 1, and the
previous history for that identity is discarded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("message")

		a, err := newApp("Add")
		if err != nil {
			return err
		}
		defer a.Close()

		rec, rebaselined, err := a.Add(args[0], description)
		if err != nil {
			return err
		}

		if rebaselined {
			fmt.Printf("Re-baselined %s (%s)\n", rec.Identity, rec.Digest)
		} else {
			fmt.Printf("Tracking %s (%s)\n", rec.Identity, rec.Digest)
		}
		return nil
	},
}

// verify command
var verifyCmd = &cobra.Command{
	Use:   "verify PATH",
	Short: "Verify one tracked file against its recorded digest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Verify")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Verify(args[0])
		if err != nil {
			if errors.Is(err, fic.ErrNotTracked) {
				fmt.Printf("unknown: %s is not tracked\n", args[0])
			}
			return err
		}

		switch res.Status {
		case model.StatusVerified:
			fmt.Printf("ok: %s (checks: %d)\n", res.Identity, res.CheckCount)
		case model.StatusTampered:
			fmt.Printf("TAMPERED: %s\n", res.Identity)
			fmt.Printf("  expected: %s\n", res.ExpectedDigest)
			fmt.Printf("  current:  %s\n", res.CurrentDigest)
		case model.StatusMissing:
			fmt.Printf("MISSING: %s no longer exists\n", res.Identity)
		}
		return nil
	},
}

// verify-all command
var verifyAllCmd = &cobra.Command{
	Use:   "verify-all",
	Short: "Verify every tracked file",
	Long: `Verify every tracked file. Finding tampered or missing files is a
successful run; the process only fails on operational errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("VerifyAll")
		if err != nil {
			return err
		}
		defer a.Close()

		sum, err := a.VerifyAll()
		if err != nil {
			return err
		}

		for _, r := range sum.Results {
			if r.Err != nil {
				fmt.Printf("error     %s  (%v)\n", r.Identity, r.Err)
				continue
			}
			fmt.Printf("%-9s %s\n", statusGlyph(r.Status), r.Identity)
		}

		fmt.Printf("\nVerified: %d  Tampered: %d  Missing: %d  Errors: %d\n",
			sum.Verified, sum.Tampered, sum.Missing, sum.Errors)
		for _, identity := range sum.Flagged {
			fmt.Printf("  needs attention: %s\n", identity)
		}
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked files and their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.List()
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No files tracked.")
			return nil
		}

		fmt.Printf("%-9s %-10s %-7s %-19s %s\n", "STATUS", "SIZE", "CHECKS", "LAST CHECKED", "PATH")
		for _, rec := range records {
			fmt.Printf("%-9s %-10d %-7d %-19s %s\n",
				statusGlyph(rec.Status),
				rec.SizeBytes,
				rec.CheckCount,
				rec.LastCheckedAt.Local().Format("2006-01-02 15:04:05"),
				rec.Identity,
			)
			if rec.Description != "" {
				fmt.Printf("%41s %s\n", "", rec.Description)
			}
		}
		return nil
	},
}

// remove command
var removeCmd = &cobra.Command{
	Use:   "remove PATH",
	Short: "Stop tracking a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Remove")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export DEST",
	Short: "Export the integrity database",
	Long: `Export the integrity database to a local path or an s3://bucket/key
destination. With --encrypt the archive is encrypted with the configured
public key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		a, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Export(args[0], encrypt)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d record(s) to %s\n", n, args[0])
		return nil
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import SRC",
	Short: "Import an integrity database",
	Long: `Import an integrity database from a local path or an s3://bucket/key
source. Strategy "replace" discards the current database; "merge" keeps
records the archive does not name, with the archive winning on conflict.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategyName, _ := cmd.Flags().GetString("strategy")
		decrypt, _ := cmd.Flags().GetBool("decrypt")

		strategy, err := fic.ParseMergeStrategy(strategyName)
		if err != nil {
			return err
		}

		var passphrase string
		if decrypt {
			passphrase, err = readPassphrase("Passphrase for private key: ")
			if err != nil {
				return err
			}
		}

		a, err := newApp("Import")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Import(args[0], strategy, decrypt, passphrase)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d record(s) from %s (%s)\n", n, args[0], strategy)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent database operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if !op.FinishedAt.IsZero() {
				duration = op.FinishedAt.Sub(op.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Printf("%s  %-10s  %s  %-8s  %s\n",
				op.ID[:8],
				op.Operation,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringP("message", "m", "", "Description stored with the record")
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(verifyAllCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().Bool("encrypt", false, "Encrypt the archive with the configured public key")
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("strategy", "replace", "Import strategy: replace or merge")
	importCmd.Flags().Bool("decrypt", false, "Decrypt the archive with the configured private key")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
}
