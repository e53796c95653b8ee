package client

import (
	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewRoot constructs a root Cobra command for the logchain client.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "logchain",
		Short: "logchain client commands",
	}
	root.AddCommand(NewLogCommand(baseURL))
	root.AddCommand(NewHealthCommand(baseURL))
	return root
}
