// SPDX-License-Identifier: MIT
package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gitlab.com/fisherprime/hpp/lexer"
)

func newTokensCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print a header's token sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			file, err := os.Open(args[0])
			if err != nil {
				return
			}
			defer file.Close()

			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return
			}

			opts := lexer.NewOpts()
			opts.Debug = cfg.Debug
			opts.Logger = newLogger(cmd.ErrOrStderr(), cfg)
			opts.Source = bufio.NewReader(file)

			tokens, err := lexer.Tokenize(cmd.Context(), opts.Options()...)
			if err != nil {
				return
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), tokens.String())

			return
		},
	}
}
