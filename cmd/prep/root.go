package main

import (
	"fmt"
	"io"
	"os"

	"recipe-prep/internal/pkg/common"

	"github.com/spf13/cobra"
)

// NewRootCmd 創建根命令
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prep",
		Short: "Recipe data preparation tools",
		Long: `prep cleans recipe tables offline.

The directions command extracts Prep / Cook / Ready In durations from the
cooking directions column and strips the header from the text. The classify
command asks the configured OpenRouter model for breakfast / lunch / dinner
labels.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level, _ := cmd.Flags().GetString("log-level")
			common.InitConsoleLogger(level, cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(NewDirectionsCmd())
	cmd.AddCommand(NewClassifyCmd())

	return cmd
}

// Execute 執行根命令
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openInput 開啟輸入檔，"-" 表示標準輸入
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

// createOutput 建立輸出檔，"-" 表示標準輸出
func createOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
