package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// newHashPasswordCmd prints bcrypt hashes for passwords read one per line
// from stdin. Useful for seeding users directly in the database.
func newHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print bcrypt hashes for passwords read from stdin, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				password := strings.TrimRight(scanner.Text(), "\r")
				if password == "" {
					continue
				}
				if err := domain.ValidatePassword(password); err != nil {
					return fmt.Errorf("rejected password: %w", err)
				}
				hash, err := auth.HashPassword(password, cost)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hash)
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
