package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	as3 "github.com/DilecPadovani/appcovecompiler"
	"github.com/DilecPadovani/appcovecompiler/i18n"
)

var (
	schemaFile string
	lang       string
)

func main() {
	root := &cobra.Command{
		Use:           "as3",
		Short:         "Compile AS3 schema documents and validate data against them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&schemaFile, "schema", "s", "", "schema document (.yaml, .yml or .json)")
	root.PersistentFlags().StringVar(&lang, "lang", "en", "message language (en/ja)")
	_ = root.MarkPersistentFlagRequired("schema")

	check := &cobra.Command{
		Use:   "check <data.json>",
		Short: "Validate a JSON data file and print its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	program := &cobra.Command{
		Use:   "program",
		Short: "Print the compiled validator program",
		Args:  cobra.NoArgs,
		RunE:  runProgram,
	}
	root.AddCommand(check, program)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "as3:", err)
		os.Exit(1)
	}
}

func loadSchema() (*as3.Schema, error) {
	data, err := os.ReadFile(schemaFile)
	if err != nil {
		return nil, err
	}
	var doc any
	switch strings.ToLower(filepath.Ext(schemaFile)) {
	case ".yaml", ".yml":
		doc, err = as3.LoadYAML(data)
	default:
		doc, err = as3.LoadJSON(data)
	}
	if err != nil {
		return nil, err
	}
	return as3.New(doc)
}

func runCheck(cmd *cobra.Command, args []string) error {
	i18n.SetLanguage(lang)
	s, err := loadSchema()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	input, err := as3.LoadJSON(data)
	if err != nil {
		return err
	}
	out, err := s.Apply(context.Background(), input)
	if err != nil {
		if iss, ok := as3.AsIssues(err); ok {
			for _, it := range iss {
				fmt.Fprintf(os.Stderr, "%s: %s\n", it.Path, it.Message)
			}
			return fmt.Errorf("%d validation issue(s)", len(iss))
		}
		return err
	}
	enc, err := json.MarshalIndent(renderable(out), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(enc))
	return nil
}

func runProgram(cmd *cobra.Command, args []string) error {
	s, err := loadSchema()
	if err != nil {
		return err
	}
	prog, err := s.Program()
	if err != nil {
		return err
	}
	fmt.Println(prog)
	return nil
}

// renderable rewrites canonical output into JSON-encodable values: map keys
// become strings, sets become sorted arrays.
func renderable(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = renderable(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = renderable(e)
		}
		return out
	case map[any]struct{}:
		elems := make([]string, 0, len(t))
		byRepr := make(map[string]any, len(t))
		for e := range t {
			r := fmt.Sprint(e)
			elems = append(elems, r)
			byRepr[r] = e
		}
		sort.Strings(elems)
		out := make([]any, 0, len(elems))
		for _, r := range elems {
			out = append(out, renderable(byRepr[r]))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = renderable(e)
		}
		return out
	default:
		return v
	}
}
