package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codechunk/internal/adapter/chunker"
	"codechunk/internal/domain"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and file extensions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		chk, err := chunker.NewCompositeChunker(GetConfig().Chunker)
		if err != nil {
			return err
		}
		exts := make(map[domain.Language][]string)
		for _, ext := range domain.Extensions() {
			lang, _ := domain.LanguageForPath("x" + ext)
			exts[lang] = append(exts[lang], ext)
		}
		for _, lang := range chk.Languages() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", lang, strings.Join(exts[lang], " "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
