package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rushteam/rentprice/config"
)

func newModelStatusCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "model-status",
		Short: "Load the model artifact and report what the cache would serve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			rt, err := config.Build(cmd.Context(), cfg, slog.Default())
			if err != nil {
				return err
			}
			defer rt.Close()

			// Get never fails while the fallback is enabled; with it disabled the
			// error is part of the status report below.
			_, getErr := rt.Cache.Get(cmd.Context())
			st := rt.Cache.Status()

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "State:     %s\n", st.State)
			fmt.Fprintf(w, "Model:     %s\n", st.Model)
			fmt.Fprintf(w, "Version:   %s\n", st.Version)
			fmt.Fprintf(w, "Fallback:  %t\n", st.Fallback)
			fmt.Fprintf(w, "Attempts:  %d\n", st.Attempts)
			if st.LastError != nil {
				fmt.Fprintf(w, "LastError: %v\n", st.LastError)
			}
			return getErr
		},
	}
}
