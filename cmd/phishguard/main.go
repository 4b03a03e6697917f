// Command phishguard is the PhishGuard CLI. It talks to a running
// PhishGuard server and prints graded verdicts for URLs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/phishguard/phishguard/pkg/client"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

var (
	serverURL    string
	cfgFile      string
	outputFormat string
	authToken    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "phishguard",
	Short: "PhishGuard CLI",
	Long: `phishguard checks whether links are disguised impersonations of
well-known meeting services (Google Meet, Zoom, Teams, ...) and prints a
graded verdict: SAFE, SUSPICIOUS or DANGEROUS.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.phishguard")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if serverURL == "" {
			serverURL = viper.GetString("server_url")
		}
		if serverURL == "" {
			serverURL = "http://localhost:8080"
		}
		if authToken == "" {
			authToken = viper.GetString("auth_token")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.phishguard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "PhishGuard server URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "bearer token identifying the caller")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "text", "output format: text or json")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

func newClient() *client.Client {
	opts := []client.Option{client.WithTimeout(60 * time.Second)}
	if authToken != "" {
		opts = append(opts, client.WithBearerToken(authToken))
	}
	return client.New(serverURL, opts...)
}

// ── check ────────────────────────────────────────────────────────────────────

var checkCmd = &cobra.Command{
	Use:   "check <url> [url...]",
	Short: "Analyze one or more URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		ctx := context.Background()

		exitCode := 0
		for i, target := range args {
			if i > 0 {
				fmt.Println(strings.Repeat("=", 50))
			}
			v, err := c.Analyze(ctx, target)
			if err != nil {
				fmt.Fprintf(os.Stderr, "❌ %s: %v\n", target, err)
				exitCode = 1
				continue
			}
			if err := printVerdict(v); err != nil {
				return err
			}
			if v.Level != client.LevelSafe {
				exitCode = 2
			}
		}
		if exitCode != 0 {
			os.Exit(exitCode)
		}
		return nil
	},
}

// ── scan ─────────────────────────────────────────────────────────────────────

var scanCmd = &cobra.Command{
	Use:   "scan <text>",
	Short: "Extract URLs from free text and analyze them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()

		resp, err := c.ScanText(context.Background(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(resp)
		}

		if len(resp.Results) == 0 {
			fmt.Println("No URLs found. Pass some text containing links to analyze.")
			return nil
		}
		for i, r := range resp.Results {
			if i > 0 {
				fmt.Println(strings.Repeat("=", 50))
			}
			if r.Error != "" {
				fmt.Printf("❌ Error analyzing %s: %s\n", r.URL, r.Error)
				continue
			}
			if err := printVerdict(r.Verdict); err != nil {
				return err
			}
		}
		return nil
	},
}

// ── stats ────────────────────────────────────────────────────────────────────

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show service statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newClient().Stats(context.Background())
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(s)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Total links checked:\t%d\n", s.TotalChecks)
		fmt.Fprintf(w, "Threats detected:\t%d\n", s.ThreatsFound)
		fmt.Fprintf(w, "Cache hits:\t%d\n", s.CacheHits)
		fmt.Fprintf(w, "Detection rate:\t%.1f%%\n", s.DetectionRate)
		return w.Flush()
	},
}

// ── report ───────────────────────────────────────────────────────────────────

var reportReason string

var reportCmd = &cobra.Command{
	Use:   "report <url>",
	Short: "Report a URL as phishing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newClient().ReportPhishing(context.Background(), args[0], reportReason)
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(r)
		}
		fmt.Printf("Report %s filed for %s (status: %s)\n", r.ID, r.Domain, r.Status)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportReason, "reason", "", "why this URL is being reported")
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("phishguard", version)
	},
}

// ── output ───────────────────────────────────────────────────────────────────

const (
	maxIssuesShown          = 5
	maxRecommendationsShown = 3
)

// printVerdict renders a verdict the way the service's chat front-ends do:
// level banner, confidence, the first few issues and recommendations.
func printVerdict(v *client.Verdict) error {
	if outputFormat == "json" {
		return printJSON(v)
	}

	switch v.Level {
	case client.LevelDangerous:
		fmt.Println("🔴 DANGEROUS LINK - DO NOT CLICK")
	case client.LevelSuspicious:
		fmt.Println("🟡 SUSPICIOUS LINK - EXERCISE CAUTION")
	default:
		fmt.Println("🟢 SAFE LINK")
	}
	fmt.Printf("🔗 URL: %s\n", v.URL)
	fmt.Printf("📊 Confidence: %.0f%%\n", v.Confidence)

	if len(v.Issues) > 0 {
		fmt.Println("\n⚠️  Issues found:")
		for i, issue := range v.Issues {
			if i == maxIssuesShown {
				fmt.Printf("   ... and %d more issues\n", len(v.Issues)-maxIssuesShown)
				break
			}
			fmt.Printf("   ❌ %s\n", issue)
		}
	}
	if len(v.Recommendations) > 0 {
		fmt.Println("\n💡 Recommendations:")
		for i, rec := range v.Recommendations {
			if i == maxRecommendationsShown {
				break
			}
			fmt.Printf("   • %s\n", rec)
		}
	}
	if v.Level != client.LevelSafe && v.DomainRecord != nil && v.DomainRecord.DomainAgeDays != nil {
		fmt.Printf("\n📅 Domain age: %d days\n", *v.DomainRecord.DomainAgeDays)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
