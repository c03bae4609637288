package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"codechunk/config"
	"codechunk/internal/adapter/chunker"
	"codechunk/internal/domain"
)

var (
	parseJSON     bool
	parseLanguage string
	parseUseCase  string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Extract the chunks of one file",
	Long: `Parse one file and print its chunks, imports and exports. The language
comes from the file extension unless --language is given. Use "-" to read
from standard input (requires --language).

Examples:
  codechunk parse src/App.tsx
  codechunk parse main.go --json
  cat lib.rs | codechunk parse - --language rust
  codechunk parse Token.sol --use-case contract`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "output as JSON")
	parseCmd.Flags().StringVarP(&parseLanguage, "language", "l", "", "language tag (default from extension)")
	parseCmd.Flags().StringVar(&parseUseCase, "use-case", "", "chunker preset for the language, e.g. react, performance")
}

func runParse(cmd *cobra.Command, args []string) error {
	content, lang, err := readParseInput(args[0])
	if err != nil {
		return err
	}

	chunkerCfg := GetConfig().Chunker
	if parseUseCase != "" {
		chunkerCfg = config.ForUseCase(string(lang), parseUseCase)
	}
	chk, err := chunker.NewCompositeChunker(chunkerCfg)
	if err != nil {
		return err
	}

	result, err := chk.Parse(content, string(lang))
	if err != nil {
		return err
	}
	if args[0] != "-" {
		result.FilePath = args[0]
	}

	out := cmd.OutOrStdout()
	if parseJSON {
		return writeJSON(out, result)
	}
	printResult(out, result)
	return nil
}

func readParseInput(arg string) (string, domain.Language, error) {
	var (
		lang domain.Language
		err  error
	)
	if parseLanguage != "" {
		if lang, err = domain.ParseLanguage(parseLanguage); err != nil {
			return "", "", err
		}
	}

	if arg == "-" {
		if lang == "" {
			return "", "", fmt.Errorf("--language is required when reading from stdin")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), lang, nil
	}

	path, err := absPath(arg)
	if err != nil {
		return "", "", err
	}
	if lang == "" {
		var ok bool
		if lang, ok = domain.LanguageForPath(path); !ok {
			return "", "", fmt.Errorf("%w: cannot detect language of %s", domain.ErrUnsupportedLanguage, arg)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), lang, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, result *domain.ParseResult) {
	if result.FilePath != "" {
		fmt.Fprintf(w, "%s (%s)\n", result.FilePath, result.Language)
	}
	for _, c := range result.Chunks {
		name := c.Name
		if class := c.ClassName(); class != "" {
			name = class + "." + name
		}
		flag := ""
		if c.Oversized {
			flag = " oversized"
		}
		fmt.Fprintf(w, "  %-10s %s (lines %d-%d) [%.2f]%s\n", c.Kind, name, c.StartLine, c.EndLine, c.Confidence, flag)
	}
	if len(result.Imports) > 0 {
		fmt.Fprintf(w, "imports:\n")
		for _, imp := range result.Imports {
			fmt.Fprintf(w, "  %s %v\n", imp.Module, imp.Names)
		}
	}
	if len(result.Exports) > 0 {
		fmt.Fprintf(w, "exports:\n")
		for _, exp := range result.Exports {
			def := ""
			if exp.IsDefault {
				def = " (default)"
			}
			fmt.Fprintf(w, "  %v%s\n", exp.Names, def)
		}
	}
}
