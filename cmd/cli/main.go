// Command cli audits a batch of web pages and writes a PDF report plus a
// JSON export of every result.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pagemeta-crawler/internal/config"
	"pagemeta-crawler/internal/crawler"
	"pagemeta-crawler/internal/extractor"
	"pagemeta-crawler/internal/ioformats"
	"pagemeta-crawler/internal/report"
	"pagemeta-crawler/pkg/logger"
)

var (
	flagConfig  string
	flagInput   string
	flagReport  string
	flagExport  string
	flagWorkers int
	flagTimeout int
	flagDelay   int
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pagemeta [urls...]",
	Short: "Bulk metadata audit with PDF report generation",
	Long: "Fetches each URL under a bounded worker pool, extracts page metadata\n" +
		"(title, description, social-card tags, structured data, headings, links,\n" +
		"images) and renders a paginated PDF report plus a JSON export.\n" +
		"URLs come from arguments, an --input file, or an interactive prompt.",
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to JSON config file")
	rootCmd.Flags().StringVarP(&flagInput, "input", "i", "", "URL list file (csv with 'url' column, ndjson, or plain text)")
	rootCmd.Flags().StringVar(&flagReport, "report", "", "PDF report output path")
	rootCmd.Flags().StringVarP(&flagExport, "output", "o", "", "JSON export output path")
	rootCmd.Flags().IntVar(&flagWorkers, "workers", 0, "concurrent fetch workers")
	rootCmd.Flags().IntVar(&flagTimeout, "timeout", 0, "per-request timeout in seconds")
	rootCmd.Flags().IntVar(&flagDelay, "delay", 0, "pause per worker after each page, in seconds")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(&cfg)

	if err := logger.Setup(flagVerbose, cfg.LogPath); err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	urls, err := gatherURLs(args)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs to crawl")
	}

	fmt.Printf("Starting crawl of %d URL(s)...\n", len(urls))

	client := crawler.NewHTTPClient(cfg.Timeout(), 5*time.Second, cfg.MaxBodyBytes)
	orc := crawler.NewOrchestrator(client, extractor.New(), crawler.Options{
		Workers: cfg.Workers,
		Timeout: cfg.Timeout(),
		Delay:   cfg.Delay(),
	})
	results := orc.Crawl(context.Background(), urls)

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	fmt.Printf("Crawling complete! Scraped %d sites (%d failed).\n", len(results), failed)

	doc := report.Build(results, time.Now())
	if err := report.WritePDF(doc, cfg.ReportPath); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logrus.Infof("PDF report generated: %s", cfg.ReportPath)

	if err := ioformats.WriteJSONFile(cfg.ExportPath, results); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	logrus.Infof("raw data saved to: %s", cfg.ExportPath)

	fmt.Printf("Report generated successfully: %s\n", cfg.ReportPath)
	fmt.Printf("Raw data saved to: %s\n", cfg.ExportPath)
	return nil
}

func applyFlags(cfg *config.Config) {
	if flagReport != "" {
		cfg.ReportPath = flagReport
	}
	if flagExport != "" {
		cfg.ExportPath = flagExport
	}
	if flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	if flagTimeout > 0 {
		cfg.TimeoutSeconds = flagTimeout
	}
	if flagDelay > 0 {
		cfg.DelaySeconds = flagDelay
	}
}

// gatherURLs takes URLs from the command line, then from --input, then from
// an interactive prompt.
func gatherURLs(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if flagInput != "" {
		urls, err := ioformats.ReadURLs(flagInput)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return urls, nil
	}
	return promptURLs(), nil
}

func promptURLs() []string {
	fmt.Println("Enter website URLs, one per line (blank line to finish):")
	var urls []string
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			break
		}
		urls = append(urls, line)
	}
	return urls
}

func main() {
	// optional .env for local overrides such as PAGEMETA_CONFIG
	_ = godotenv.Load()
	if flagConfig == "" {
		flagConfig = os.Getenv("PAGEMETA_CONFIG")
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
