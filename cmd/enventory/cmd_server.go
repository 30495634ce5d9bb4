package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/enventory/internal/kernel"
	"github.com/shashiranjanraj/enventory/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Run()
	},
}

var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "Print the registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := kernel.BuildRouter(kernel.BuildServices(), nil)

		routes := r.Routes()
		sort.Slice(routes, func(i, j int) bool {
			if routes[i].Path == routes[j].Path {
				return routes[i].Method < routes[j].Method
			}
			return routes[i].Path < routes[j].Path
		})

		for _, rt := range routes {
			fmt.Printf("%-7s %-35s %s\n", rt.Method, rt.Path, rt.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, routeListCmd)
}
