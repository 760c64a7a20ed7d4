package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/lox/forecastcards/internal/card"
	"github.com/lox/forecastcards/internal/forecast"
	"github.com/lox/forecastcards/internal/ingest"
	"github.com/lox/forecastcards/internal/models"
)

type RenderCmd struct {
	Mode string `help:"Pivot mode." enum:"backward,forward" default:"backward"`
	Date string `help:"Pivot date (YYYY-MM-DD). Defaults to the latest date of the mode's range."`
	Out  string `help:"Output directory." default:"cards" type:"path"`
}

func (c *RenderCmd) Run(g *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mode, err := forecast.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	ds, err := g.load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	sel := forecast.RestoreSelection(ds.Stats, forecast.Selection{Mode: mode, PivotDate: c.Date}).Selection()
	view := forecast.BuildView(ds.Records, sel)
	if len(view.Cards) == 0 {
		log.Printf("no cards for %s %s", sel.Mode, sel.PivotDate)
		return nil
	}

	if err := os.MkdirAll(c.Out, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	renderer := g.renderer()
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, fc := range view.Cards {
		eg.Go(func() error {
			path, err := cardPath(c.Out, fc.Key)
			if err != nil {
				log.Printf("skipping card: %v", err)
				return nil
			}
			scene := card.EncodeCard(fc, &view.Scale.Axis)
			if scene == nil {
				return nil
			}
			data, err := renderer.Render(ctx, scene)
			if err != nil {
				return fmt.Errorf("render %s: %w", fc.Key, err)
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	log.Printf("rendered %d cards for %s %s to %s", len(view.Cards), sel.Mode.PivotLabel(), sel.PivotDate, c.Out)
	return nil
}

// cardPath names the PNG for a group key inside dir. Keys come straight from
// dataset cells, so anything that is not an ISO date is refused.
func cardPath(dir, key string) (string, error) {
	if _, err := time.Parse(models.DateLayout, key); err != nil {
		return "", fmt.Errorf("invalid card key %q: not a %s date", key, models.DateLayout)
	}
	return filepath.Join(dir, key+".png"), nil
}

type InfoCmd struct{}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(28)
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

func orDash(s string) string {
	if s == "" {
		return "---"
	}
	return s
}

func (c *InfoCmd) Run(g *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ds, err := g.load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	row := func(label, min, max string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(label),
			valueStyle.Render(orDash(min)+"  to  "+orDash(max)),
		)
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("%s (%d records)", g.Source, len(ds.Records))),
		"",
		row("Model runs (creation date)", ds.Stats.CreationMin, ds.Stats.CreationMax),
		row("Forecast dates (prog date)", ds.Stats.ProgMin, ds.Stats.ProgMax),
	)
	fmt.Println(panelStyle.Render(body))
	return nil
}

type ExportCmd struct {
	Out string `help:"Parquet file to write." required:"" type:"path"`
}

func (c *ExportCmd) Run(g *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ds, err := g.load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("create %s: %w", c.Out, err)
	}
	if err := ingest.WriteParquet(f, ds.Records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", c.Out, err)
	}

	log.Printf("exported %d records to %s", len(ds.Records), c.Out)
	return nil
}
