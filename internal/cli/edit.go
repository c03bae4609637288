package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"codechunk/internal/adapter/fs"
	"codechunk/internal/adapter/incremental"
	"codechunk/internal/domain"
)

var (
	editStart    int
	editEnd      int
	editText     string
	editTextFile string
	editFromFile bool
	editWrite    bool
	editJSON     bool
)

var editCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Apply a line edit and re-parse incrementally",
	Long: `Replace lines --start..--end of the cached text of a file and re-parse
only the affected region. --end equal to --start minus one inserts before
--start; an empty --text deletes the range. With --from-file the current
contents of the file on disk are diffed against the cached text instead.

Examples:
  codechunk edit app.py --start 3 --end 4 --text "def renamed():\n    pass"
  codechunk edit app.py --start 10 --end 9 --text-file snippet.py --write
  codechunk edit app.py --from-file`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().IntVar(&editStart, "start", 0, "first line replaced (1-based)")
	editCmd.Flags().IntVar(&editEnd, "end", 0, "last line replaced (start-1 inserts)")
	editCmd.Flags().StringVar(&editText, "text", "", `replacement text ("\n" separates lines)`)
	editCmd.Flags().StringVar(&editTextFile, "text-file", "", "read replacement text from a file")
	editCmd.Flags().BoolVar(&editFromFile, "from-file", false, "diff the file on disk against the cached text")
	editCmd.Flags().BoolVar(&editWrite, "write", false, "write the edited text back to the file")
	editCmd.Flags().BoolVar(&editJSON, "json", false, "output as JSON")
}

func runEdit(cmd *cobra.Command, args []string) error {
	path, err := absPath(args[0])
	if err != nil {
		return err
	}

	sess, err := openSession(GetRootDir())
	if err != nil {
		return err
	}
	defer sess.Close()

	var result *domain.ParseResult
	if editFromFile {
		result, err = sess.edit.ApplyFile(path)
	} else {
		var edit domain.Edit
		edit, err = editFromFlags(cmd)
		if err != nil {
			return err
		}
		result, err = sess.edit.ApplyEdits(path, []domain.Edit{edit})
	}
	if err != nil {
		return err
	}

	if editWrite && !editFromFile {
		entry, err := sess.reparser.Entry(path)
		if err != nil {
			return err
		}
		if err := (fs.Reader{}).WriteFile(path, entry.Text); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	out := cmd.OutOrStdout()
	report := sess.reparser.LastReport()
	if editJSON {
		return writeJSON(out, struct {
			Result *domain.ParseResult `json:"result"`
			Report incremental.Report  `json:"report"`
		}{result, report})
	}
	printResult(out, result)
	printReport(out, report)
	return nil
}

func editFromFlags(cmd *cobra.Command) (domain.Edit, error) {
	if !cmd.Flags().Changed("start") || !cmd.Flags().Changed("end") {
		return domain.Edit{}, fmt.Errorf("--start and --end are required unless --from-file is set")
	}
	text := unescapeNewlines(editText)
	if editTextFile != "" {
		data, err := os.ReadFile(editTextFile)
		if err != nil {
			return domain.Edit{}, fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(data)
	}
	return domain.Edit{StartLine: editStart, EndLine: editEnd, Text: text}, nil
}

func unescapeNewlines(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				out = append(out, '\n')
				i++
				continue
			case 't':
				out = append(out, '\t')
				i++
				continue
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}

func printReport(w io.Writer, rep incremental.Report) {
	if rep.Full {
		fmt.Fprintf(w, "full re-parse: %d chunks\n", rep.Reparsed)
		return
	}
	fmt.Fprintf(w, "re-scanned %d window(s):", len(rep.Windows))
	for _, win := range rep.Windows {
		fmt.Fprintf(w, " %d-%d", win.Start, win.End)
	}
	fmt.Fprintf(w, "\nunaffected %d, shifted %d, invalidated %d, re-parsed %d\n",
		rep.Unaffected, rep.Shifted, rep.Invalidated, rep.Reparsed)
}
