package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"callscreen/internal/app"
	"callscreen/internal/config"
	"callscreen/internal/fraud"
	"callscreen/internal/logging"
	"callscreen/internal/pipeline"
	"callscreen/internal/stt"
)

var (
	v      = viper.New()
	logger *log.Logger

	flaggedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	cleanStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("provider", "", "Transcription provider: whisper|openai|google")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")
	screenCmd.Flags().StringP("model", "m", "", "Model tier: "+tierNames())

	v.BindPFlag("stt_provider", rootCmd.PersistentFlags().Lookup("provider"))
	v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("default_model", screenCmd.Flags().Lookup("model"))

	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(keywordsCmd)
}

func tierNames() string {
	tiers := stt.Tiers()
	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = t.String()
	}
	return strings.Join(names, "|")
}

func initConfig() {
	godotenv.Load()
	logger = logging.New(os.Stderr, v.GetString("log_level"))
}

var rootCmd = &cobra.Command{
	Use:   "callscreen",
	Short: "Transcribe call recordings and screen them for fraud-risk phrases",
}

var screenCmd = &cobra.Command{
	Use:   "screen <audio-file>",
	Short: "Normalize, transcribe and screen one recording",
	Long: `Convert the recording to mp3, transcribe it with the selected model tier,
save the transcript and report which fraud-risk phrases it contains.`,
	Args: cobra.ExactArgs(1),
	RunE: runScreen,
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "List the fraud-risk phrases in match order",
	Run: func(cmd *cobra.Command, args []string) {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"#", "Phrase"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		for i, k := range fraud.DefaultKeywords() {
			table.Append([]string{strconv.Itoa(i + 1), k})
		}
		table.Render()
	},
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger = logging.New(os.Stderr, cfg.LogLevel)

	p, providerName, err := app.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("screening", "file", path, "provider", providerName, "model", cfg.DefaultTier)
	res, err := p.Run(ctx, pipeline.Upload{
		Filename: filepath.Base(path),
		Data:     f,
		Tier:     cfg.DefaultTier,
	}, func(from, to pipeline.State) {
		logger.Debug("state", "from", from, "to", to)
	})
	if err != nil {
		return err
	}

	renderResult(res, cfg.TranscriptDir)
	return nil
}

func renderResult(res *pipeline.Result, transcriptDir string) {
	verdict := cleanStyle.Render("no")
	if res.FraudDetected {
		verdict = flaggedStyle.Render("YES")
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Uploaded File Name", "Model", "Fraud Detected", "Detected Keywords"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.Append([]string{
		res.Filename,
		res.Model.String(),
		verdict,
		strings.Join(res.Keywords, ", "),
	})
	table.Render()

	fmt.Printf("\nTranscript: %s\n\n%s\n", filepath.Join(transcriptDir, res.TranscriptName), res.Transcript)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
