package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sourcegraph/conc/pool"
	"github.com/urfave/cli/v2"

	"github.com/MikeSquared-Agency/Pow2/internal/api"
	"github.com/MikeSquared-Agency/Pow2/internal/engine"
	"github.com/MikeSquared-Agency/Pow2/internal/factors"
	"github.com/MikeSquared-Agency/Pow2/internal/season"
)

func factorsCmd() *cli.Command {
	return &cli.Command{
		Name:  "factors",
		Usage: "List registered factor implementations in lookup order",
		Action: func(c *cli.Context) error {
			e := newEnv(c)
			infos := api.ListFactors(e.engine.Registry())
			if e.json {
				return writeJSON(e.out, infos)
			}
			rows := [][]string{}
			for _, f := range infos {
				for _, impl := range f.Implementations {
					kind := impl.Algorithm
					if impl.Composite {
						kind = "composite"
					}
					rows = append(rows, []string{f.Name, kind, impl.Method, yesNo(impl.DateRelative)})
				}
			}
			renderTable(e.out, "Factors", []string{"Name", "Algorithm", "Method", "Date relative"}, rows)
			return nil
		},
	}
}

func seasonCmd() *cli.Command {
	return &cli.Command{
		Name:      "season",
		Usage:     "Show a season's metadata and factor tree",
		ArgsUsage: "<slug>",
		Action: func(c *cli.Context) error {
			slug, err := requireArg(c, "season slug")
			if err != nil {
				return err
			}
			e := newEnv(c)
			se, err := e.loader.Load(c.Context, slug)
			if err != nil {
				return err
			}
			if e.json {
				return writeJSON(e.out, map[string]any{
					"slug":       se.Slug,
					"category":   se.Category,
					"collection": se.Collection,
					"season":     se.Meta,
					"base":       se.Base,
					"factors":    se.Factors,
				})
			}

			color.New(color.Bold).Fprintf(e.out, "%s (%s)\n", se.Meta.Title, se.Slug)
			fmt.Fprintf(e.out, "collections: %s\n", strings.Join(se.Collection.Slugs, ", "))
			if !se.StartAt.IsZero() {
				fmt.Fprintf(e.out, "starts: %s, %d epochs of %dh\n",
					se.StartAt.Format(time.RFC3339), se.Meta.MaxEpoch, se.Meta.EpochHours)
			}
			fmt.Fprintf(e.out, "cpu base: %s\n\n", se.Base)

			rows := [][]string{}
			for _, n := range se.Factors {
				rows = appendNode(rows, n, "")
			}
			renderTable(e.out, "Factor tree", []string{"Factor", "Priority", "Algorithm", "Method"}, rows)
			return nil
		},
	}
}

func appendNode(rows [][]string, n factors.Node, indent string) [][]string {
	algorithm := n.Algorithm
	if n.IsComposite() {
		algorithm = "composite"
	}
	rows = append(rows, []string{indent + n.Name, fmt.Sprint(n.Priority), algorithm, n.Method})
	for _, child := range n.Children {
		rows = appendNode(rows, child, indent+"  ")
	}
	return rows
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate season document files",
		ArgsUsage: "<file.yaml>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("missing season file argument")
			}
			e := newEnv(c)
			results := validateFiles(e.loader.Parser(), c.Args().Slice())

			failed := 0
			for _, r := range results {
				if r.err != nil {
					failed++
					color.Red("%s: %v", r.path, r.err)
					continue
				}
				color.Green("%s: ok (%d factors)", r.slug, r.factors)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d season files are invalid", failed, len(results))
			}
			return nil
		},
	}
}

type validation struct {
	path    string
	slug    string
	factors int
	err     error
}

// validateFiles parses every file concurrently and returns the outcomes in
// argument order.
func validateFiles(parser *season.Parser, paths []string) []validation {
	p := pool.NewWithResults[validation]().WithMaxGoroutines(runtime.NumCPU())
	for _, path := range paths {
		p.Go(func() validation {
			v := validation{path: path, slug: slugForFile(path)}
			data, err := os.ReadFile(path)
			if err != nil {
				v.err = err
				return v
			}
			se, err := parser.Parse(v.slug, data)
			if err != nil {
				v.err = err
				return v
			}
			v.factors = len(se.Factors)
			return v
		})
	}
	results := p.Wait()

	order := make(map[string]int, len(paths))
	for i, path := range paths {
		order[path] = i
	}
	sort.SliceStable(results, func(i, j int) bool { return order[results[i].path] < order[results[j].path] })
	return results
}

// slugForFile derives category-season from <category>/<season>.yaml.
func slugForFile(path string) string {
	return filepath.Base(filepath.Dir(path)) + "-" + strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func calcCmd() *cli.Command {
	return &cli.Command{
		Name:      "calc",
		Usage:     "Compute cpu for the entities in an input file",
		ArgsUsage: "<slug>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "JSON file with entities, domains and rare_balances",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:   "now",
				Usage:  "Evaluate date-relative factors at this instant",
				Layout: time.RFC3339,
			},
		},
		Action: func(c *cli.Context) error {
			slug, err := requireArg(c, "season slug")
			if err != nil {
				return err
			}
			data, err := os.ReadFile(c.String("input"))
			if err != nil {
				return err
			}
			req, err := engine.DecodeRequest(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", c.String("input"), err)
			}
			req.Season = slug
			if now := c.Timestamp("now"); now != nil {
				req.Now = now
			}

			e := newEnv(c)
			resp, err := e.engine.Calculate(c.Context, req, engine.SourceCLI)
			if err != nil {
				return err
			}
			if e.json {
				return writeJSON(e.out, resp)
			}
			renderResponse(e.out, resp)
			return nil
		},
	}
}
