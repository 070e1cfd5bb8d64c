package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"neetmentor-backend/internal/config"
	"neetmentor-backend/internal/database"
	"neetmentor-backend/internal/logger"
	"neetmentor-backend/internal/repository"
	"neetmentor-backend/internal/seed"
)

var rootCmd = &cobra.Command{
	Use:           "neetmentor-seed",
	Short:         "Database maintenance for the NEETMentor backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.Init(cfg.LogLevel, cfg.Env)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(ctx context.Context, env *env) error {
			applied, err := database.RunMigrations(ctx, env.pool, env.cfg.MigrationsDir)
			if err != nil {
				return err
			}
			log.Info().Int("applied", applied).Msg("migrations up to date")
			return nil
		})
	},
}

var defaultsCmd = &cobra.Command{
	Use:     "seed",
	Aliases: []string{"defaults"},
	Short: "Install the starter subjects, topics and sample questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(ctx context.Context, env *env) error {
			res, err := seed.Load(ctx, repository.NewCatalogRepo(env.pool), seed.DefaultCatalog)
			if err != nil {
				return err
			}
			log.Info().Int("inserted", res.Inserted).Int("skipped", res.Skipped).Msg("starter catalog seeded")
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import questions from a spreadsheet",
	Long: "Import questions from an .xlsx sheet with the columns\n" +
		"Subject, Topic, Question, Option A, Option B, Option C, Option D, Correct, Difficulty, Explanation.\n" +
		"Correct is an option letter (A-D) or a 1-based option number.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, _ := cmd.Flags().GetString("sheet")
		strict, _ := cmd.Flags().GetBool("strict")

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		rows, problems, err := seed.ReadSheet(f, sheet)
		if err != nil {
			return err
		}
		for _, p := range problems {
			log.Warn().Msg(p)
		}
		if strict && len(problems) > 0 {
			return fmt.Errorf("%d malformed rows; nothing imported", len(problems))
		}

		return withPool(cmd.Context(), func(ctx context.Context, env *env) error {
			res, err := seed.Load(ctx, repository.NewCatalogRepo(env.pool), rows)
			if err != nil {
				return err
			}
			log.Info().
				Int("inserted", res.Inserted).
				Int("skipped", res.Skipped).
				Int("malformed", len(problems)).
				Msg("import finished")
			return nil
		})
	},
}

func init() {
	importCmd.Flags().String("sheet", "", "sheet name (defaults to the first sheet)")
	importCmd.Flags().Bool("strict", false, "abort when any row is malformed")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(defaultsCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("seed failed")
		os.Exit(1)
	}
}
