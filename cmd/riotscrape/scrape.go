package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"riotscrape/pkg/auth"
	"riotscrape/pkg/config"
	"riotscrape/pkg/logger"
	"riotscrape/pkg/riot"
	"riotscrape/pkg/scraper"
	"riotscrape/pkg/store"
)

var (
	// Scrape command flags
	apiKey       string
	outputFile   string
	appendOutput bool
	continuous   bool
	withTimeline bool
	emptyWeeks   int
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <region>:<summoner>",
	Short: "Download a summoner's match history into a JSONL file",
	Long: `Download every match of a summoner's history into a JSONL file, one
match record per line.

The matchlist API is scanned backward in one-week windows until ten
consecutive weeks (configurable) come back empty. With --append, matches
already present in the output file are recognized and not downloaded again.

The API key is resolved from --api-key, the RIOTSCRAPE_API_KEY/RIOT_API_KEY
environment variables, the config file, or the system keychain (see
'riotscrape auth login').`,
	Example: `  # Download a full match history
  riotscrape scrape euw:Caps

  # Include per-match timelines and keep extending an existing archive
  riotscrape scrape euw:Caps --with-timeline --append

  # Explicit output path
  riotscrape scrape na:Doublelift --output doublelift.jsonl --append --continuous`,
	Args: cobra.ExactArgs(1),
	Run:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVar(&apiKey, "api-key", "", "Riot API key (overrides environment and keychain)")
	scrapeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default <summoner>.jsonl)")
	scrapeCmd.Flags().BoolVar(&appendOutput, "append", false, "recognize existing matches in the output file and append new entries")
	scrapeCmd.Flags().BoolVar(&continuous, "continuous", false, "assume stored matches form one unbroken time range and only search before and after it")
	scrapeCmd.Flags().BoolVar(&withTimeline, "with-timeline", false, "retrieve timeline information for every match (if available)")
	scrapeCmd.Flags().IntVar(&emptyWeeks, "empty-weeks", 0, "consecutive empty weeks that end the scan (default 10)")
}

func runScrape(cmd *cobra.Command, args []string) {
	region, summonerName, ok := splitSummonerArg(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "error: argument must be of the format <region>:<summoner_name>, got %q\n", args[0])
		os.Exit(1)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}
	mergeScrapeFlags(cmd, cfg, region, summonerName)

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}
	log := logger.GetLogger()

	key, err := resolveAPIKey(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "no Riot API key found; pass --api-key, set RIOT_API_KEY or run 'riotscrape auth login'")
		os.Exit(1)
	}

	fileStore, err := store.Open(cfg.Output.File, store.Options{
		Append:     cfg.Output.Append,
		Continuous: cfg.Output.Continuous,
	})
	if err != nil {
		log.WithError(err).Error("failed to open match store")
		os.Exit(1)
	}
	defer fileStore.Close()

	client := riot.NewClient(key, cfg.Riot.RequestsPerSecond, cfg.Riot.Timeout, log)
	s := scraper.New(client, fileStore, &scraper.ConsoleSink{}, scraper.Options{
		Region:           cfg.Riot.Region,
		EmptyWeeksToStop: cfg.Scrape.EmptyWeeksToStop,
		WithTimeline:     cfg.Scrape.WithTimeline,
	})

	log.WithFields(map[string]interface{}{
		"summoner": summonerName,
		"region":   cfg.Riot.Region,
		"output":   cfg.Output.File,
	}).Info("starting scrape")

	completed, err := s.Run(summonerName)
	if err != nil {
		log.WithError(err).Error("scrape failed")
		os.Exit(1)
	}
	if completed {
		log.Info("scrape completed")
	} else {
		log.Info("scrape stopped early")
	}
}

// splitSummonerArg parses the <region>:<summoner_name> positional argument
func splitSummonerArg(arg string) (region, name string, ok bool) {
	region, name, found := strings.Cut(arg, ":")
	if !found || region == "" || name == "" {
		return "", "", false
	}
	return region, name, true
}

// mergeScrapeFlags lays the command line over the loaded configuration
func mergeScrapeFlags(cmd *cobra.Command, cfg *config.Config, region, summonerName string) {
	cfg.Riot.Region = region

	if outputFile != "" {
		cfg.Output.File = outputFile
	}
	if cfg.Output.File == "" {
		cfg.Output.File = summonerName + ".jsonl"
	}
	if appendOutput {
		cfg.Output.Append = true
	}
	if continuous {
		cfg.Output.Continuous = true
	}
	// Appending to the default output file implies a continuous archive of
	// this summoner's history, so resume from both ends of it.
	if cfg.Output.Append && !cmd.Flags().Changed("output") && !cmd.Flags().Changed("continuous") {
		cfg.Output.Continuous = true
	}
	if withTimeline {
		cfg.Scrape.WithTimeline = true
	}
	if emptyWeeks > 0 {
		cfg.Scrape.EmptyWeeksToStop = emptyWeeks
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}

// resolveAPIKey picks the API key from the flag, the config/environment or
// the system keychain, in that order.
func resolveAPIKey(cfg *config.Config) (string, error) {
	if apiKey != "" {
		return apiKey, nil
	}
	if cfg.Riot.APIKey != "" {
		return cfg.Riot.APIKey, nil
	}
	return auth.NewManager().Retrieve()
}
