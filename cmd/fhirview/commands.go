package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/node"
	"github.com/reoring/fhirview/rules"
	"github.com/reoring/fhirview/schema"
	"github.com/reoring/fhirview/view"
)

var ruleSets = map[string]view.Rule{
	"exclusive": rules.ExclusiveChoices(),
	"required":  rules.RequiredPresent(),
}

// load reads a JSON or YAML document; "-" reads standard input as JSON.
func (a *app) load(ctx context.Context, name string) (*node.Node, error) {
	warn := func(it fhirview.Issue) {
		a.log.Warn().Str("file", name).Str("path", it.Path).Str("code", it.Code).Msg(it.Message)
	}
	var r io.Reader
	if name == "-" {
		r = a.in
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return fhirview.ParseYAML(data)
	}
	return fhirview.StreamParse(ctx, r, a.cfg.ParseOpt(warn))
}

func (a *app) project(n *node.Node, typeName string) (view.View, error) {
	if typeName != "" {
		return view.New(a.reg, typeName, n)
	}
	return view.Resource(a.reg, n)
}

func (a *app) validateCmd() *cobra.Command {
	var (
		typeName string
		strict   bool
		codes    bool
		failFast bool
		sets     []string
	)
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate resources against the schema table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt := view.ValidateOpt{
				Unknown:  a.cfg.Unknown(),
				Codes:    codes || a.cfg.Codes,
				FailFast: failFast,
			}
			if strict {
				opt.Unknown = fhirview.UnknownStrict
			}
			for _, s := range sets {
				r, ok := ruleSets[s]
				if !ok {
					return fmt.Errorf("unknown rule set %q (want exclusive or required)", s)
				}
				opt.Rules = append(opt.Rules, r)
			}

			failed := false
			for _, name := range args {
				ctx := cmd.Context()
				n, err := a.load(ctx, name)
				if err == nil {
					var v view.View
					if v, err = a.project(n, typeName); err == nil {
						err = v.Validate(ctx, opt)
					}
				}
				if err != nil {
					failed = true
					a.log.Debug().Str("file", name).Int("issues", len(fhirview.ToIssues(err))).Msg("invalid")
					a.out.issues(name, err)
					continue
				}
				a.log.Debug().Str("file", name).Msg("valid")
				a.out.valid(name)
			}
			if failed {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&typeName, "type", "", "validate as this type instead of the resourceType member")
	cmd.Flags().BoolVar(&strict, "strict", false, "report members the schema does not define")
	cmd.Flags().BoolVar(&codes, "codes", false, "check code values against the schema code lists")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first issue")
	cmd.Flags().StringSliceVar(&sets, "rules", nil, "extra rule sets: exclusive, required")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get FILE POINTER",
		Short: "Print the value at a JSON Pointer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.load(cmd.Context(), args[0])
			if err != nil {
				a.out.issues(args[0], err)
				return errFailed
			}
			v, ok := fhirview.Lookup(n, args[1])
			if !ok {
				return fmt.Errorf("%s: nothing at %s", args[0], args[1])
			}
			return a.out.json(v)
		},
	}
}

func (a *app) buildCmd() *cobra.Command {
	var withID bool
	cmd := &cobra.Command{
		Use:   "build TYPE [name=value]...",
		Short: "Build a resource from field assignments",
		Long: "Build a resource from field assignments. Values are read as JSON and fall\n" +
			"back to plain strings, so status=final and valueQuantity='{\"value\":1}' both work.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := view.NewBuilderFor(a.reg, args[0])
			if withID {
				id := b.NewID()
				a.log.Debug().Str("id", id).Msg("generated id")
			}
			for _, kv := range args[1:] {
				name, raw, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("assignment %q must be name=value", kv)
				}
				b.Set(name, literal(cmd.Context(), raw))
			}
			v, err := b.Build()
			if err != nil {
				a.out.issues(args[0], err)
				return errFailed
			}
			return a.out.json(v.Node())
		},
	}
	cmd.Flags().BoolVar(&withID, "id", false, "assign a random id")
	return cmd
}

func literal(ctx context.Context, raw string) *node.Node {
	if n, err := fhirview.ParseBytes(ctx, []byte(raw)); err == nil {
		return n
	}
	return node.String(raw)
}

func (a *app) patchCmd() *cobra.Command {
	var merge bool
	cmd := &cobra.Command{
		Use:   "patch FILE PATCH",
		Short: "Apply a JSON Patch (or merge patch) and validate the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.load(cmd.Context(), args[0])
			if err != nil {
				a.out.issues(args[0], err)
				return errFailed
			}
			patch, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			var out *node.Node
			if merge {
				out, err = fhirview.ApplyMergePatch(n, patch)
			} else {
				out, err = fhirview.ApplyPatch(n, patch)
			}
			if err == nil {
				var v view.View
				if v, err = view.Resource(a.reg, out); err == nil {
					err = v.Validate(cmd.Context(), view.ValidateOpt{Unknown: a.cfg.Unknown(), Codes: a.cfg.Codes})
				}
			}
			if err != nil {
				a.out.issues(args[1], err)
				return errFailed
			}
			return a.out.json(out)
		},
	}
	cmd.Flags().BoolVar(&merge, "merge", false, "treat PATCH as an RFC 7386 merge patch")
	return cmd
}

func (a *app) diffCmd() *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "diff A B",
		Short: "Show a line diff between two documents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var docs [2]*node.Node
			for i, name := range args {
				n, err := a.load(cmd.Context(), name)
				if err != nil {
					a.out.issues(name, err)
					return errFailed
				}
				docs[i] = n
			}
			dl, err := fhirview.Diff(docs[0], docs[1])
			if err != nil {
				return err
			}
			if !fhirview.Changed(dl) {
				a.log.Info().Msg("documents are equal")
				return nil
			}
			text, err := fhirview.UnifiedDiff(docs[0], docs[1], lines)
			if err != nil {
				return err
			}
			a.out.diff(text)
			return errFailed
		},
	}
	cmd.Flags().IntVar(&lines, "context", 3, "lines of context around each change")
	return cmd
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema TYPE",
		Short: "Print the JSON Schema of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schema.JSONSchema(a.reg, args[0])
			if err != nil {
				a.out.issues(args[0], err)
				return errFailed
			}
			b, err := gojson.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
}

func (a *app) typesCmd() *cobra.Command {
	var resources bool
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the registered types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := a.reg.Names()
			if resources {
				names = a.reg.Resources()
			}
			for _, n := range names {
				a.out.line("%s", n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&resources, "resources", false, "only list resource types")
	return cmd
}
