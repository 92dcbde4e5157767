package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/webchat/config"
	srv "github.com/mohammad-safakhou/webchat/internal/server"
)

func main() {
	// optional; real deployments set the environment directly
	_ = godotenv.Load()

	root := &cobra.Command{Use: "webchat"}
	root.AddCommand(serveCMD())
	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func serveCMD() *cobra.Command {
	var cfgPath string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			return srv.Run(cfg)
		},
	}
	serve.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config)")
	return serve
}
