package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/piwi3910/SlabNest/internal/app"
	"github.com/piwi3910/SlabNest/internal/config"
	"github.com/piwi3910/SlabNest/internal/engine"
	"github.com/piwi3910/SlabNest/internal/export"
	"github.com/piwi3910/SlabNest/internal/importer"
	"github.com/piwi3910/SlabNest/internal/logger"
	"github.com/piwi3910/SlabNest/internal/model"
	"github.com/piwi3910/SlabNest/internal/project"
	"github.com/piwi3910/SlabNest/internal/service/nesting"
)

// nestingService is what the CLI needs from the nesting service.
type nestingService interface {
	Optimize(ctx context.Context, req model.NestingRequest) (model.NestingResult, error)
	Compare(ctx context.Context, req model.NestingRequest, scenarios []engine.ComparisonScenario) ([]engine.ComparisonResult, error)
}

// bootstrap loads environment configuration, starts the logger and builds
// the nesting service.
func bootstrap() (nestingService, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	cfg := config.C()
	if err := logger.Init(cfg.Logger.Level(), cfg.Logger.AsJSON()); err != nil {
		return nil, err
	}
	return nesting.NewNestingService(
		nesting.EngineOptimizer,
		cfg.Nesting.OptimizeTimeout(),
		cfg.Nesting.DefaultKerf(),
	), nil
}

func runServe(ctx context.Context, args []string, _ io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func runOptimize(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("optimize", flag.ContinueOnError)
	in := fs.String("in", "", "nesting request JSON or "+project.FileExtension+" project (required)")
	out := fs.String("out", "", "write the result JSON to this file instead of stdout")
	pdfPath := fs.String("pdf", "", "export the slab layouts as PDF")
	labelsPath := fs.String("labels", "", "export QR part labels as PDF")
	xlsxPath := fs.String("xlsx", "", "export the cut list as XLSX")
	projectPath := fs.String("project", "", "save parts, slabs and result as a project")
	offcutsTo := fs.String("offcuts-to", "", "return reusable offcuts to this inventory file")
	configPath := fs.String("config", project.DefaultConfigPath(), "user preferences file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *in == "" {
		fs.Usage()
		return errUsage
	}

	svc, err := bootstrap()
	if err != nil {
		return err
	}

	req, proj, err := loadRequest(*in)
	if err != nil {
		return err
	}

	result, err := svc.Optimize(ctx, req)
	if err != nil {
		return err
	}

	if len(result.UnplacedParts) > 0 {
		logger.Warn(ctx, "parts left unplaced", logger.Strings("parts", result.UnplacedParts))
	}

	settings := model.NestSettings{KerfWidth: *req.KerfWidth, Timeout: config.C().Nesting.OptimizeTimeout()}
	layout := export.NewLayout(result, req.Parts, req.Slabs, settings)

	if *out == "" {
		if err := writeJSON(stdout, result); err != nil {
			return err
		}
	} else {
		if err := writeJSONFile(*out, result); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Placed %d of %d parts on %d slab(s), efficiency %.1f%%\n",
			len(result.Placements), len(req.Parts), len(layout.Sheets), result.TotalEfficiency())
	}

	exports := []struct {
		path string
		fn   func(string, export.Layout) error
	}{
		{*pdfPath, export.ExportPDF},
		{*labelsPath, export.ExportLabels},
		{*xlsxPath, export.ExportCutList},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := e.fn(e.path, layout); err != nil {
			return fmt.Errorf("export %s: %w", e.path, err)
		}
		logger.Info(ctx, "exported", logger.String("path", e.path))
	}

	if *projectPath != "" {
		proj.Settings.KerfWidth = *req.KerfWidth
		proj.Result = &result
		proj.Placements = nil
		if err := project.SaveProject(*projectPath, proj); err != nil {
			return err
		}
		if err := rememberProject(*configPath, *projectPath); err != nil {
			logger.Warn(ctx, "could not update recent projects", logger.ErrorF(err))
		}
	}

	if *offcutsTo != "" {
		inv, err := project.LoadInventory(*offcutsTo)
		if err != nil {
			return err
		}
		added := inv.AddOffcuts(layout.Offcuts(), req.Slabs)
		if err := project.SaveInventory(*offcutsTo, inv); err != nil {
			return err
		}
		logger.Info(ctx, "offcuts returned to inventory", logger.Int("count", len(added)))
	}
	return nil
}

func runCompare(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	in := fs.String("in", "", "nesting request JSON or "+project.FileExtension+" project (required)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *in == "" {
		fs.Usage()
		return errUsage
	}

	svc, err := bootstrap()
	if err != nil {
		return err
	}
	req, _, err := loadRequest(*in)
	if err != nil {
		return err
	}

	results, err := svc.Compare(ctx, req, nil)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tKERF\tSLABS\tPLACED\tUNPLACED\tWASTE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.1f\t%d\t%d\t%d\t%.1f%%\n",
			r.Scenario.Name, r.Scenario.Settings.KerfWidth, r.SlabsUsed, r.PlacedCount, r.UnplacedCount, r.WastePercent)
	}
	return tw.Flush()
}

func runImport(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	partsPath := fs.String("parts", "", "CSV, Excel or DXF part list (required)")
	slabSize := fs.String("slab", "", "slab size as WIDTHxHEIGHT in mm")
	count := fs.Int("n", 1, "number of slabs of -slab size")
	invPath := fs.String("inventory", "", "take available slabs from this inventory file")
	stones := fs.String("stone", "", "comma separated stone types to take from the inventory")
	kerf := fs.Float64("kerf", -1, "kerf width in mm (default from user preferences)")
	rotate := fs.Bool("rotate", false, "allow rotation for every imported part")
	out := fs.String("out", "", "write the request JSON to this file instead of stdout")
	configPath := fs.String("config", project.DefaultConfigPath(), "user preferences file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *partsPath == "" {
		fs.Usage()
		return errUsage
	}

	if _, err := bootstrap(); err != nil {
		return err
	}

	res := importer.ImportFile(*partsPath)
	for _, w := range res.Warnings {
		logger.Warn(ctx, "import warning", logger.String("detail", w))
	}
	for _, e := range res.Errors {
		logger.Error(ctx, "import error", logger.String("detail", e))
	}
	if len(res.Parts) == 0 {
		return fmt.Errorf("no parts imported from %s", *partsPath)
	}
	if *rotate {
		for i := range res.Parts {
			res.Parts[i].AllowRotation = true
		}
	}

	var slabs []model.Slab
	if *slabSize != "" {
		w, h, err := parseSize(*slabSize)
		if err != nil {
			return err
		}
		for i := 1; i <= *count; i++ {
			slabs = append(slabs, model.NewSlab(fmt.Sprintf("Slab %d", i), w, h))
		}
	}
	if *invPath != "" || *stones != "" {
		path := *invPath
		if path == "" {
			path = project.DefaultInventoryPath()
		}
		inv, err := project.LoadInventory(path)
		if err != nil {
			return err
		}
		slabs = append(slabs, inv.SlabsFor(model.SlabFilter{StoneTypes: splitList(*stones)})...)
	}
	if len(slabs) == 0 {
		return fmt.Errorf("no slabs: pass -slab or -inventory/-stone")
	}

	if *kerf < 0 {
		prefs, err := project.LoadAppConfig(*configPath)
		if err != nil {
			return err
		}
		settings := model.DefaultSettings()
		prefs.ApplyToSettings(&settings)
		*kerf = settings.KerfWidth
	}

	req := model.NestingRequest{Parts: res.Parts, Slabs: slabs, KerfWidth: kerf}
	if *out == "" {
		return writeJSON(stdout, req)
	}
	if err := writeJSONFile(*out, req); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Imported %d parts, %d slab(s), kerf %.1fmm -> %s\n", len(res.Parts), len(slabs), *kerf, *out)
	return nil
}

func runEstimate(_ context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	in := fs.String("in", "", "nesting request JSON or "+project.FileExtension+" project")
	partsPath := fs.String("parts", "", "CSV, Excel or DXF part list")
	slabSize := fs.String("slab", "", "slab size as WIDTHxHEIGHT (default: first slab of -in)")
	kerf := fs.Float64("kerf", -1, "kerf width in mm (default: request kerf or 3)")
	waste := fs.Float64("waste", 20, "extra waste allowance in percent")
	price := fs.Float64("price", 0, "price per slab")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	var parts []model.Part
	var slabW, slabH float64
	k := model.DefaultSettings().KerfWidth
	switch {
	case *in != "":
		req, _, err := loadRequest(*in)
		if err != nil {
			return err
		}
		parts = req.Parts
		if len(req.Slabs) > 0 {
			slabW, slabH = req.Slabs[0].Width, req.Slabs[0].Height
		}
		k = *req.KerfWidth
	case *partsPath != "":
		res := importer.ImportFile(*partsPath)
		if len(res.Parts) == 0 {
			return fmt.Errorf("no parts imported from %s", *partsPath)
		}
		parts = res.Parts
	default:
		fs.Usage()
		return errUsage
	}
	if *slabSize != "" {
		w, h, err := parseSize(*slabSize)
		if err != nil {
			return err
		}
		slabW, slabH = w, h
	}
	if *kerf >= 0 {
		k = *kerf
	}

	est := model.EstimateSlabs(parts, slabW, slabH, k, *waste, *price)
	edges := model.CalculateEdgeFinishing(parts, *waste)

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Parts\t%d\n", len(parts))
	fmt.Fprintf(tw, "Part area (with kerf)\t%.2f m²\n", est.TotalPartAreaM2)
	fmt.Fprintf(tw, "Slab size\t%.0f x %.0f mm\n", slabW, slabH)
	fmt.Fprintf(tw, "Slabs (exact)\t%.2f\n", est.SlabsNeededExact)
	fmt.Fprintf(tw, "Slabs (with %.0f%% waste)\t%d\n", est.WastePercent, est.SlabsWithWaste)
	if est.PricePerSlab > 0 {
		fmt.Fprintf(tw, "Estimated cost\t%.2f\n", est.EstimatedCost)
	}
	if len(est.Oversized) > 0 {
		fmt.Fprintf(tw, "Oversized parts\t%s\n", strings.Join(est.Oversized, ", "))
	}
	if edges.EdgeCount > 0 {
		fmt.Fprintf(tw, "Finished edges\t%d on %d part(s), %.2f m with waste\n", edges.EdgeCount, edges.PartCount, edges.TotalWithWasteM)
		for _, profile := range sortedKeys(edges.ByProfile) {
			fmt.Fprintf(tw, "  %s\t%.2f m\n", profile, edges.ByProfile[profile]/1000)
		}
	}
	return tw.Flush()
}

func runInventory(_ context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("inventory", flag.ContinueOnError)
	path := fs.String("path", project.DefaultInventoryPath(), "inventory file")
	stones := fs.String("stone", "", "comma separated stone types to list")
	importPath := fs.String("import", "", "merge slabs from this inventory file")
	backupPath := fs.String("backup", "", "write preferences and inventory to this backup file")
	configPath := fs.String("config", project.DefaultConfigPath(), "user preferences file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	inv, err := project.LoadInventory(*path)
	if err != nil {
		return err
	}

	if *importPath != "" {
		before := len(inv.Slabs)
		if inv, err = project.ImportInventory(*importPath, inv); err != nil {
			return err
		}
		if err := project.SaveInventory(*path, inv); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Imported %d slab(s)\n", len(inv.Slabs)-before)
	}

	if *backupPath != "" {
		prefs, err := project.LoadAppConfig(*configPath)
		if err != nil {
			return err
		}
		if err := project.ExportAllData(*backupPath, prefs, inv); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Backup written to %s\n", *backupPath)
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tSTONE\tNAME\tSIZE\tTHICK\tQTY\tSTATUS")
	for _, s := range inv.Filter(model.SlabFilter{StoneTypes: splitList(*stones)}) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0fx%.0f\t%.0f\t%d\t%s\n",
			s.ID, s.SlabNumber, s.StoneType, s.StoneName, s.Width, s.Height, s.Thickness, s.Quantity, s.Status)
	}
	stats := inv.Stats()
	fmt.Fprintf(tw, "\nTotal\t%d slab(s), %d available, %.2f m² available\n",
		stats.TotalSlabs, stats.AvailableSlabs, stats.AvailableArea/1e6)
	return tw.Flush()
}

// loadRequest reads a nesting request from a request JSON file or a saved
// project. The returned project carries the same parts and slabs.
func loadRequest(path string) (model.NestingRequest, model.Project, error) {
	if filepath.Ext(path) == project.FileExtension {
		p, err := project.LoadProject(path)
		if err != nil {
			return model.NestingRequest{}, model.Project{}, err
		}
		kerf := p.Settings.KerfWidth
		return model.NestingRequest{Parts: p.Parts, Slabs: p.Slabs, KerfWidth: &kerf}, p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.NestingRequest{}, model.Project{}, err
	}
	var req model.NestingRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return model.NestingRequest{}, model.Project{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if req.KerfWidth == nil {
		return model.NestingRequest{}, model.Project{}, model.InvalidRequest("Missing required fields: parts, slabs, kerfWidth")
	}

	p := model.NewProject()
	p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p.Parts = req.Parts
	p.Slabs = req.Slabs
	p.Settings.KerfWidth = *req.KerfWidth
	return req, p, nil
}

func rememberProject(configPath, projectPath string) error {
	prefs, err := project.LoadAppConfig(configPath)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		abs = projectPath
	}
	prefs.AddRecentProject(abs)
	return project.SaveAppConfig(configPath, prefs)
}

// parseSize parses "3200x1600" (also "3200X1600" or "3200*1600").
func parseSize(s string) (float64, float64, error) {
	s = strings.NewReplacer("X", "x", "*", "x").Replace(strings.TrimSpace(s))
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q: want WIDTHxHEIGHT", s)
	}
	w, werr := strconv.ParseFloat(strings.TrimSpace(ws), 64)
	h, herr := strconv.ParseFloat(strings.TrimSpace(hs), 64)
	if err := errors.Join(werr, herr); err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q: want positive WIDTHxHEIGHT", s)
	}
	return w, h, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
