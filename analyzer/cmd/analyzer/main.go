package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/Krimson/ctg-contractions/analyzer/docs" // Swagger docs
)

// @title CTG Contraction Analyzer API
// @version 1.0
// @description API для поиска и классификации маточных сокращений по UC-каналу КТГ
// @description
// @description ## Описание
// @description Сервис принимает CSV с колонками time (секунды) и UC, находит схватки
// @description и относит каждую к категории по интервалу и длительности.
// @description

// @host localhost:8080
// @BasePath /
// @schemes http

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "analyzer",
		Short:        "CTG uterine contraction analyzer",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(rulesCmd())

	return rootCmd
}
