package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Andres9890/iadrive/internal/config"
	"github.com/Andres9890/iadrive/internal/pipeline"
	"github.com/Andres9890/iadrive/pkg/types"
	"github.com/spf13/cobra"
)

var (
	appVersion = "0.1.0"
	cfgFile    string
	identifier string
	collection string
	mediatype  string
	dest       string
	metaPairs  []string
	jobs       int
	logLevel   string
	logFormat  string
	dryRun     bool
	flat       bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "iadrive LINK",
	Short: "Mirror public Google Drive files and folders to the Internet Archive",
	Long: `iadrive downloads the file or folder behind a public Google Drive share
link (Google Docs, Sheets and Slides links included), derives archive.org
item metadata from the downloaded files, and uploads everything as a new
item on archive.org.`,
	Args: cobra.ExactArgs(1),
	RunE: runMirror,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.Flags().StringVarP(&identifier, "identifier", "i", "", "archive.org identifier (default derived from the link)")
	rootCmd.Flags().StringVar(&collection, "collection", "", "archive.org collection (default opensource)")
	rootCmd.Flags().StringVar(&mediatype, "mediatype", "", "archive.org mediatype (default data)")
	rootCmd.Flags().StringVarP(&dest, "dest", "d", "", "download destination directory")
	rootCmd.Flags().StringArrayVar(&metaPairs, "meta", nil, "extra metadata as key=value (repeatable)")
	rootCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "number of concurrent downloads (0=auto)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "", "log format: text, json")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "download and print metadata without uploading")
	rootCmd.Flags().BoolVar(&flat, "flat", false, "upload all files into the item root, without folder paths")
}

func runMirror(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	cfg.ApplyEnv()

	if identifier != "" {
		cfg.Identifier = identifier
	}
	if collection != "" {
		cfg.Collection = collection
	}
	if cmd.Flags().Changed("mediatype") {
		cfg.Mediatype = mediatype
		cfg.MediatypeExplicit = true
	}
	if dest != "" {
		cfg.Dest = dest
	}
	if jobs > 0 {
		cfg.Jobs = jobs
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if dryRun {
		cfg.DryRun = true
	}
	if flat {
		cfg.Flat = true
	}
	if cfg.Metadata == nil {
		cfg.Metadata = map[string]string{}
	}
	for _, pair := range metaPairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid --meta value %q: expected key=value", pair)
		}
		cfg.Metadata[key] = value
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	config.SetupLogger(cfg)

	p, err := pipeline.New(cmd.Context(), cfg, appVersion)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	result, err := p.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func printResult(result *types.MirrorResult) {
	switch {
	case result.DryRun:
		printRecord(result.Metadata)
		fmt.Printf("dry run: would upload %d file(s) as %s\n", result.Metadata.FileCount, result.ItemURL)
	case result.AlreadyExists:
		fmt.Printf("item already exists: %s\n", result.ItemURL)
	case result.Uploaded:
		fmt.Printf("uploaded %d file(s) in %s: %s\n", result.Metadata.FileCount, result.Duration.Round(time.Millisecond), result.ItemURL)
	default:
		fmt.Println("nothing to upload")
	}
}

// printRecord writes the derived item record to stdout, one field per line.
func printRecord(meta types.ItemMetadata) {
	fmt.Printf("identifier:  %s\n", meta.Identifier)
	fmt.Printf("title:       %s\n", meta.Title)
	fmt.Printf("mediatype:   %s\n", meta.Mediatype)
	fmt.Printf("collection:  %s\n", meta.Collection)
	fmt.Printf("publisher:   %s\n", meta.Publisher)
	if meta.Date != nil {
		fmt.Printf("date:        %s\n", meta.Date.Format("2006-01-02"))
	}
	if len(meta.Subjects) > 0 {
		fmt.Printf("subject:     %s\n", strings.Join(meta.Subjects, "; "))
	}
	if meta.DocType != "" {
		fmt.Printf("doctype:     %s\n", meta.DocType)
	}
	fmt.Printf("originalurl: %s\n", meta.SourceURL)
	fmt.Printf("filecount:   %d\n", meta.FileCount)
	if meta.FolderCount > 0 {
		fmt.Printf("foldercount: %d\n", meta.FolderCount)
	}

	keys := make([]string, 0, len(meta.Extra))
	for k := range meta.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s: %s\n", k, meta.Extra[k])
	}
}
