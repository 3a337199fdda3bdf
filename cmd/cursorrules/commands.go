package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/AntoineGS/cursorrules/internal/catalog"
	"github.com/AntoineGS/cursorrules/internal/config"
	"github.com/AntoineGS/cursorrules/internal/state"
	tmpl "github.com/AntoineGS/cursorrules/internal/template"
	"github.com/AntoineGS/cursorrules/internal/tui"
)

func runList(opts *options, s streams) error {
	env, err := loadEnvironment(opts)
	if err != nil {
		return err
	}

	cat, err := env.openCatalog(opts.logger)
	if err != nil {
		return err
	}

	idx, err := filteredCatalog{catalog: cat, only: env.only}.Scan()
	if err != nil {
		return err
	}

	engine, err := tmpl.NewEngine()
	if err != nil {
		return err
	}

	out, err := engine.List(listData(idx.Search(opts.search)))
	if err != nil {
		return err
	}

	fmt.Fprint(s.out, out)
	return nil
}

// listData groups items by category in catalog order, keeping the item
// order within each category.
func listData(items []catalog.Item) tmpl.ListData {
	byCategory := make(map[catalog.Category][]string)
	for _, item := range items {
		byCategory[item.Category] = append(byCategory[item.Category], item.Name)
	}

	data := tmpl.ListData{Total: len(items)}
	for _, category := range catalog.Categories {
		if rules := byCategory[category]; len(rules) > 0 {
			data.Categories = append(data.Categories, tmpl.ListCategory{Name: string(category), Rules: rules})
		}
	}

	return data
}

func runVerify(opts *options, s streams) error {
	env, err := loadEnvironment(opts)
	if err != nil {
		return err
	}

	cat, err := env.openCatalog(opts.logger)
	if err != nil {
		return err
	}

	idx, err := cat.Scan()
	if err != nil {
		return err
	}

	issues, err := cat.Verify()
	if err != nil {
		return err
	}

	for _, issue := range issues {
		fmt.Fprintln(s.out, tui.ErrorStyle.Render("✗ ")+issue.String())
	}

	if len(issues) > 0 {
		return fmt.Errorf("found %d problem(s) in %d rule(s)", len(issues), idx.Len())
	}

	fmt.Fprintln(s.out, tui.SuccessStyle.Render(fmt.Sprintf("✓ %d rule(s) checked, no problems found", idx.Len())))
	return nil
}

func runHistory(opts *options, s streams) error {
	path := config.HistoryPath()
	if path == "" {
		return errors.New("cannot locate the install history: home directory is unknown")
	}

	store, err := state.Open(path)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck // best-effort cleanup

	records, err := store.RecentInstalls(opts.limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(s.out, tui.MutedTextStyle.Render("No installs recorded"))
		return nil
	}

	for _, r := range records {
		hash := r.ContentHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Fprintf(s.out, "%s  %-7s  %s  %s\n",
			tui.MutedTextStyle.Render(r.InstalledAt.Local().Format("2006-01-02 15:04:05")),
			r.PlatformOS,
			hash,
			filepath.Join(r.Destination, filepath.FromSlash(r.RelativePath)))
	}

	return nil
}
