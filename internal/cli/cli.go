// Package cli provides the cessadesk command line: the HTTP server, the
// interactive console and database maintenance.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/cessadesk/cessadesk/internal/config"
	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/gelf"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitConfig  = 2
)

// ServiceName tags GELF messages.
const ServiceName = "cessadesk"

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type CLI struct {
	rootCmd *cobra.Command
	cfg     *config.Config

	configPath string
	envFile    string
	gelf       *gelf.Writer
}

func New() *CLI {
	c := &CLI{}
	c.rootCmd = c.newRootCmd()
	return c
}

// Execute runs the CLI and returns the process exit code.
func (c *CLI) Execute() int {
	defer c.closeLogging()
	if err := c.rootCmd.Execute(); err != nil {
		fmt.Fprintf(c.rootCmd.ErrOrStderr(), "cessadesk: %s\n", errs.Message(err))
		if errs.Is(err, errs.KindConfig) {
			return ExitConfig
		}
		if errs.KindOf(err) == errs.KindInternal {
			fmt.Fprintf(c.rootCmd.ErrOrStderr(), "  %v\n", err)
		}
		return ExitFailure
	}
	return ExitSuccess
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cessadesk",
		Short: "Payroll-deduction cessation intake and review",
		Long: `cessadesk collects cessation requests from military police officers
(identification, consent and supporting documents) and gives lawyers a
dashboard to review them and track each case.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return c.initConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./cessadesk.yaml)")
	cmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(c.newServeCmd())
	cmd.AddCommand(c.newConsoleCmd())
	cmd.AddCommand(c.newMigrateCmd())
	cmd.AddCommand(c.newSeedCmd())
	cmd.AddCommand(c.newVersionCmd())
	return cmd
}

func (c *CLI) initConfig() error {
	cfg, err := config.Load(c.configPath, c.envFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.setupLogging()
	return nil
}

// setupLogging tees the standard logger to Graylog when configured.
func (c *CLI) setupLogging() {
	addr := c.cfg.Logging.GelfAddr
	if addr == "" || c.gelf != nil {
		return
	}
	w, err := gelf.New(addr, ServiceName)
	if err != nil {
		log.Printf("Warning: GELF init failed: %v", err)
		return
	}
	c.gelf = w
	log.SetOutput(io.MultiWriter(os.Stderr, w))
	log.Printf("GELF logging: enabled (%s)", addr)
}

func (c *CLI) closeLogging() {
	if c.gelf != nil {
		log.SetOutput(os.Stderr)
		c.gelf.Close()
	}
}
