// Command kapee runs and administers the Kapee shop backend.
//
//	kapee serve        start the HTTP API
//	kapee route:list   print every route
//	kapee schedule:list print housekeeping jobs
//	kapee db:indexes   create MongoDB indexes
//	kapee seed         run all seeders
//	kapee seed:admin   create or promote the configured admin
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "kapee",
	Short:         "Kapee shop backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(scheduleListCmd)

	rootCmd.AddCommand(indexesCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(seedAdminCmd)
}
