package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	emucore "github.com/user-none/eblitui/api"

	"github.com/spottenn/pokemon-gym/config"
	"github.com/spottenn/pokemon-gym/emu"
	"github.com/spottenn/pokemon-gym/gbdev"
	"github.com/spottenn/pokemon-gym/server"
	"github.com/spottenn/pokemon-gym/session"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	valueColor  = color.New(color.FgGreen).SprintFunc()
	warnColor   = color.New(color.FgYellow).SprintFunc()
)

// cores maps config core names onto linked engine factories. Builds
// that carry a full Game Boy core register it here; the default build
// ships only the deterministic development core.
var cores = map[string]emucore.CoreFactory{
	"dev": &gbdev.Factory{},
}

func newServeCmd() *cobra.Command {
	var (
		cfgFile     string
		resume      bool
		sessionID   string
		noStreaming bool
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), cfgFile)
			if err != nil {
				return err
			}
			if noStreaming {
				cfg.Streaming = false
			}

			rom, factory, cartridge, err := resolveCore(cfg)
			if err != nil {
				return err
			}

			log := slog.Default()
			sessions, err := session.NewManager(cfg.SessionsDir, cfg.AutosaveInterval, log)
			if err != nil {
				return err
			}

			srv := server.New(server.Config{
				ROM:       rom,
				Factory:   factory,
				Sessions:  sessions,
				Headless:  cfg.Headless,
				Sound:     cfg.Sound,
				Streaming: cfg.Streaming,
				Timeout:   cfg.SessionTimeout,
				Logger:    log,
			})

			resumeTarget := "fresh session on /initialize"
			if resume || sessionID != "" {
				if err := srv.Resume(sessionID); err != nil {
					if sessionID == "" && errors.Is(err, session.ErrNotFound) {
						// Nothing to resume yet; start clean.
						resumeTarget = warnColor("no previous session found")
					} else {
						return fmt.Errorf("resume session: %w", err)
					}
				} else if sessionID != "" {
					resumeTarget = sessionID
				} else {
					resumeTarget = "latest session"
				}
			}

			printBanner(cfg, cartridge, resumeTarget)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, cfg.Addr())
		},
	}

	flags := serveCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default pokemon-gym.{yaml,toml})")
	flags.String("host", "127.0.0.1", "address to bind")
	flags.Int("port", 8080, "port to bind")
	flags.String("rom", "", "path to a ROM image (empty uses the built-in dev cartridge)")
	flags.String("core", "dev", "emulator core name")
	flags.Bool("headless", true, "run without a display surface")
	flags.Bool("sound", false, "enable audio emulation")
	flags.String("sessions-dir", "gameplay_sessions", "root directory for session recordings")
	flags.Int("autosave-interval", 50, "steps between autosaves (0 disables)")
	flags.Duration("session-timeout", 0, "wall-clock session ceiling (0 disables)")
	flags.BoolVar(&resume, "resume", false, "resume the most recent session on startup")
	flags.StringVar(&sessionID, "session", "", "resume this session id on startup")
	flags.BoolVar(&noStreaming, "no-streaming", false, "queue actions synchronously instead of free-running")

	return serveCmd
}

// resolveCore picks the engine factory and cartridge for the configured
// core. The dev core runs without a ROM file; everything else needs one.
func resolveCore(cfg config.Config) ([]byte, emucore.CoreFactory, string, error) {
	factory, ok := cores[cfg.Core]
	if !ok {
		return nil, nil, "", fmt.Errorf("core %q is not linked into this build", cfg.Core)
	}
	if cfg.ROM == "" {
		return gbdev.DevROM(), factory, "built-in development cartridge", nil
	}
	rom, err := os.ReadFile(cfg.ROM)
	if err != nil {
		return nil, nil, "", fmt.Errorf("load rom: %w", err)
	}
	if err := emu.ValidateROM(rom); err != nil {
		return nil, nil, "", fmt.Errorf("rom %s: %w", cfg.ROM, err)
	}
	return rom, factory, fmt.Sprintf("%s (%s)", emu.ROMTitle(rom), cfg.ROM), nil
}

func printBanner(cfg config.Config, cartridge, resumeTarget string) {
	streaming := "on"
	if !cfg.Streaming {
		streaming = "off (synchronous)"
	}
	timeout := "none"
	if cfg.SessionTimeout > 0 {
		timeout = cfg.SessionTimeout.Round(time.Second).String()
	}

	sep := headerColor("═══════════════════════════════════════════════════")
	fmt.Println(sep)
	fmt.Println(headerColor("  pokemon-gym - Pokémon Red agent harness"))
	fmt.Println(sep)
	fmt.Printf("  Listen:     %s\n", valueColor(cfg.Addr()))
	fmt.Printf("  Cartridge:  %s\n", cartridge)
	fmt.Printf("  Sessions:   %s\n", cfg.SessionsDir)
	fmt.Printf("  Streaming:  %s\n", streaming)
	fmt.Printf("  Timeout:    %s\n", timeout)
	fmt.Printf("  Resume:     %s\n", resumeTarget)
	fmt.Println(sep)
}
