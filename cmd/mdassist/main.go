package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gubarz/mdassist/internal/config"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "mdassist",
	Short: "Markdown editing assistant",
	Long: `Editing helpers for Markdown files.

Keeps ordered lists numbered, toggles list markers, headings and inline
formatting, inserts blocks and embeds local images as base64 data URIs.
Edit a file interactively or run a single command and print, copy or
write the result.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(
		renumberCmd(),
		aliasCmd("toggle-list FILE KIND", "Toggle or cycle list markers on the selected lines", listKinds),
		aliasCmd("heading FILE up|down", "Change the heading level of the selected lines", headingDirs),
		aliasCmd("format FILE STYLE", "Toggle inline formatting on the selection or word", formatStyles),
		insertCmd(),
		runCmd(),
		actionsCmd(),
		fixCmd(),
		lensesCmd(),
		toBase64Cmd(),
		imagesCmd(),
		embedCmd(),
		editCmd(),
		watchCmd(),
	)

	rootCmd.PersistentFlags().StringP("output", "o", "", "Output mode: print, copy, write")
	rootCmd.PersistentFlags().Int("width", 0, "Resize embedded images to this width in pixels (0 keeps the size)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")

	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("resize_width", rootCmd.PersistentFlags().Lookup("width"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.Version = version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
