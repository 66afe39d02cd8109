package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lintconf/internal/config"
	"lintconf/internal/diag"
	"lintconf/internal/diagfmt"
	"lintconf/internal/loader"
	"lintconf/internal/preset"
	"lintconf/internal/resolve"
)

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Inspect the preset registry",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List registered presets and where they come from",
		Args:  cobra.NoArgs,
		RunE:  runPresetsList,
	}
	list.Flags().Bool("order", false, "list presets before the presets they extend; cyclic presets come last")
	cmd.AddCommand(list)
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate every preset and the extends graph",
		Args:  cobra.NoArgs,
		RunE:  runPresetsCheck,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Print the effective configuration of one preset",
		Args:  cobra.ExactArgs(1),
		RunE:  runPresetsShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "explain [file|directory]",
		Short: "Print the expanded layer order of a declaration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPresetsExplain,
	})
	return cmd
}

type presetEntry struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Layers int    `json:"layers"`
}

func runPresetsList(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, ".")
	if err != nil {
		return err
	}
	order, err := cmd.Flags().GetBool("order")
	if err != nil {
		return fmt.Errorf("failed to get order flag: %w", err)
	}
	snap, err := s.registry()
	if err != nil {
		return err
	}
	names := snap.Names()
	if order {
		names = extendsOrder(snap)
	}
	entries := make([]presetEntry, 0, len(names))
	for _, name := range names {
		decls, _ := snap.Lookup(name)
		entries = append(entries, presetEntry{Name: name, Source: snap.Source(name), Layers: len(decls)})
	}

	out := cmd.OutOrStdout()
	if s.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", e.Name, e.Source, e.Layers)
	}
	return tw.Flush()
}

// extendsOrder returns snap.Order followed by the presets it leaves out
// because they sit on a cycle, sorted by name.
func extendsOrder(snap *preset.Snapshot) []string {
	names := snap.Order()
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[name] = true
	}
	for _, name := range snap.Names() {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}

func runPresetsCheck(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, ".")
	if err != nil {
		return err
	}
	snap, err := s.registry()
	if err != nil {
		return err
	}
	items := snap.Check()
	if err := s.writeDiagnostics(cmd.OutOrStdout(), items, os.Args[1:]); err != nil {
		return err
	}
	if !s.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "checked %d presets: %s\n", snap.Len(), diagfmt.Summary(items))
	}
	if s.failed(items) {
		return errDiagnostics
	}
	return nil
}

func runPresetsShow(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, ".")
	if err != nil {
		return err
	}
	st, err := s.store()
	if err != nil {
		return err
	}
	name := args[0]
	if _, ok := st.Lookup(name); !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	d, err := s.newDriverFor(st, nil)
	if err != nil {
		return err
	}
	decl := config.Declaration{
		Identity: "<cli>",
		Fields:   map[string]any{config.FieldExtends: name},
	}
	res, err := d.ResolveDeclaration(cmd.Context(), decl)
	if err != nil {
		return err
	}
	items := res.Bag.Items()
	if err := s.writeDiagnostics(cmd.ErrOrStderr(), items, os.Args[1:]); err != nil {
		return err
	}
	if res.Failed() {
		return errDiagnostics
	}
	data, err := res.Result.Config.Canonical()
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	if s.failed(items) {
		return errDiagnostics
	}
	return nil
}

func runPresetsExplain(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	s, err := loadSettings(cmd, target)
	if err != nil {
		return err
	}
	path, err := locateDeclaration(target)
	if err != nil {
		return err
	}
	decl, err := loader.LoadFile(path)
	if err != nil {
		return err
	}
	snap, err := s.registry()
	if err != nil {
		return err
	}
	layers, err := resolve.New(snap).Layers(cmd.Context(), decl)
	if err != nil {
		if fatal, ok := resolve.AsDiagnostic(err); ok {
			_ = s.writeDiagnostics(cmd.ErrOrStderr(), []diag.Diagnostic{fatal}, os.Args[1:])
			return errDiagnostics
		}
		return err
	}
	out := cmd.OutOrStdout()
	for i, layer := range layers {
		fmt.Fprintf(out, "%d\t%s\n", i, layer)
	}
	return nil
}
