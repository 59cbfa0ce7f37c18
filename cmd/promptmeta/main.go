// Package main provides the promptmeta CLI.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/promptmeta"
)

var (
	flagJSON     bool
	flagVerbose  bool
	flagOutput   string
	flagPositive string
	flagNegative string
	flagParams   []string
	flagBackup   bool
	flagText     bool
)

var rootCmd = &cobra.Command{
	Use:   "promptmeta",
	Short: "Inspect and rewrite AI image generation metadata",
	Long: `promptmeta reads the prompt metadata embedded in AI-generated images
(PNG, JPEG, WEBP), identifies the tool that produced it, and normalizes
it into a common record. It can also rewrite metadata into the widely
understood plain-text dialect.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

var showCmd = &cobra.Command{
	Use:   "show <file>...",
	Short: "Show the prompt metadata embedded in image files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShow,
}

var writeCmd = &cobra.Command{
	Use:   "write <file>",
	Short: "Rewrite metadata into the plain-text dialect",
	Long: `Rewrite metadata into the plain-text dialect.

The prompts and parameters are taken from the input file and can be
overridden with flags. The result is embedded into a copy of the input
written to --output; pixel data is left untouched.

Examples:
  promptmeta write in.png -o out.png --positive "a cat"
  promptmeta write in.jpg -o out.jpg --param seed=42 --param steps=20`,
	Args: cobra.ExactArgs(1),
	RunE: runWrite,
}

var stripCmd = &cobra.Command{
	Use:   "strip <file>",
	Short: "Remove prompt metadata from an image",
	Long: `Remove prompt metadata from an image.

Text chunks, EXIF, and comments are dropped; pixel data is untouched.
Payloads hidden in pixel channel bits are not removed.`,
	Args: cobra.ExactArgs(1),
	RunE: runStrip,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the generation tools promptmeta can identify",
	Run: func(cmd *cobra.Command, args []string) {
		for _, tool := range promptmeta.Tools() {
			fmt.Println(tool)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := promptmeta.GetVersionInfo()
		fmt.Printf("promptmeta %s (commit %s, built %s, %s)\n",
			info.Version, info.GitCommit, info.BuildTime, info.GoVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	showCmd.Flags().BoolVar(&flagJSON, "json", false, "emit records as JSON")
	showCmd.Flags().BoolVar(&flagText, "text", false, "treat inputs as plain-text parameter files")

	writeCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file path (required)")
	writeCmd.Flags().StringVar(&flagPositive, "positive", "", "replace the positive prompt")
	writeCmd.Flags().StringVar(&flagNegative, "negative", "", "replace the negative prompt")
	writeCmd.Flags().StringArrayVar(&flagParams, "param", nil, "set a parameter as key=value (repeatable)")
	writeCmd.Flags().BoolVar(&flagBackup, "backup", false, "keep a .bak copy when overwriting the output")
	_ = writeCmd.MarkFlagRequired("output")

	stripCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file path (required)")
	stripCmd.Flags().BoolVar(&flagBackup, "backup", false, "keep a .bak copy when overwriting the output")
	_ = stripCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(stripCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// showRecord is the JSON shape emitted by "show --json".
type showRecord struct {
	Path     string            `json:"path"`
	Kind     string            `json:"kind"`
	Width    int               `json:"width,omitempty"`
	Height   int               `json:"height,omitempty"`
	Dialect  string            `json:"dialect,omitempty"`
	Tool     string            `json:"tool,omitempty"`
	Status   string            `json:"status"`
	Positive string            `json:"positive,omitempty"`
	Negative string            `json:"negative,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Raw      string            `json:"raw,omitempty"`
}

func runShow(cmd *cobra.Command, args []string) error {
	var opts []promptmeta.Option
	if flagText {
		opts = append(opts, promptmeta.WithPlainText())
	}

	var failed bool
	for _, path := range args {
		file, err := promptmeta.Open(path, opts...)
		if err != nil {
			slog.Error("open failed", "path", path, "error", err)
			failed = true
			continue
		}
		for _, w := range file.Warnings {
			slog.Debug("container warning", "path", path, "stage", w.Stage, "message", w.Message)
		}
		if flagJSON {
			if err := printJSON(file); err != nil {
				return err
			}
		} else {
			printHuman(file, len(args) > 1)
		}
	}
	if failed {
		return fmt.Errorf("some files could not be opened")
	}
	return nil
}

func printJSON(file *promptmeta.File) error {
	rec := showRecord{
		Path:    file.Path,
		Kind:    file.Kind.String(),
		Width:   file.Width,
		Height:  file.Height,
		Dialect: file.Dialect,
		Tool:    file.Record.Tool,
		Status:  file.Record.Status.String(),
	}
	if file.Record.Status == promptmeta.StatusSuccess {
		rec.Positive = file.Record.Positive
		rec.Negative = file.Record.Negative
		if file.Record.Params.Len() > 0 {
			rec.Params = make(map[string]string, file.Record.Params.Len())
			for _, k := range file.Record.Params.Keys() {
				v, _ := file.Record.Params.Get(k)
				rec.Params[k] = v
			}
		}
	} else {
		rec.Raw = file.Record.Raw
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func printHuman(file *promptmeta.File, header bool) {
	if header {
		fmt.Printf("== %s ==\n", file.Path)
	}
	fmt.Printf("Kind:     %s", file.Kind)
	if file.Width > 0 {
		fmt.Printf(" (%dx%d %s)", file.Width, file.Height, file.ColorMode)
	}
	fmt.Println()

	rec := file.Record
	if rec.Status != promptmeta.StatusSuccess {
		fmt.Printf("Status:   %s\n", rec.Status)
		if rec.Raw != "" {
			fmt.Printf("Raw:      %s\n", truncate(rec.Raw, 200))
		}
		return
	}

	fmt.Printf("Tool:     %s (%s)\n", rec.Tool, file.Dialect)
	fmt.Printf("Positive: %s\n", rec.Positive)
	fmt.Printf("Negative: %s\n", rec.Negative)
	for _, k := range rec.Params.Keys() {
		v, _ := rec.Params.Get(k)
		fmt.Printf("  %-10s %s\n", k+":", v)
	}
	if rec.MultiSet {
		for _, slot := range []string{promptmeta.SlotTextG, promptmeta.SlotTextL, promptmeta.SlotRefiner} {
			if v, ok := rec.PositiveSets[slot]; ok {
				fmt.Printf("  [%s] %s\n", slot, v)
			}
		}
	}
}

func runWrite(cmd *cobra.Command, args []string) error {
	file, err := promptmeta.Open(args[0])
	if err != nil {
		return err
	}

	positive := file.Record.Positive
	negative := file.Record.Negative
	params := promptmeta.NewParams()
	if file.Record.Status == promptmeta.StatusSuccess {
		for _, k := range file.Record.Params.Keys() {
			v, _ := file.Record.Params.Get(k)
			params.Set(k, v)
		}
	}

	if cmd.Flags().Changed("positive") {
		positive = flagPositive
	}
	if cmd.Flags().Changed("negative") {
		negative = flagNegative
	}
	for _, kv := range flagParams {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid --param %q: want key=value", kv)
		}
		params.Set(key, value)
	}

	payload := promptmeta.Construct(positive, negative, params)
	slog.Debug("constructed payload", "bytes", len(payload))

	saveOpts := []promptmeta.SaveOption{promptmeta.WithValidation()}
	if flagBackup {
		saveOpts = append(saveOpts, promptmeta.WithBackup(".bak"))
	}
	if err := file.SaveAs(flagOutput, payload, saveOpts...); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", flagOutput)
	return nil
}

func runStrip(cmd *cobra.Command, args []string) error {
	file, err := promptmeta.Open(args[0])
	if err != nil {
		return err
	}

	var opts []promptmeta.SaveOption
	if flagBackup {
		opts = append(opts, promptmeta.WithBackup(".bak"))
	}
	if err := file.StripAs(flagOutput, opts...); err != nil {
		return err
	}
	fmt.Printf("stripped %s\n", flagOutput)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
