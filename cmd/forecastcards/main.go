package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lox/forecastcards/internal/api"
	"github.com/lox/forecastcards/internal/imagegen"
	"github.com/lox/forecastcards/internal/ingest"
	"github.com/lox/forecastcards/internal/store"
)

// sourceSQLite selects the records saved by the import command.
const sourceSQLite = "sqlite"

type Globals struct {
	EnvFile   kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file.'"`
	Source    string                   `help:"Dataset path or URL (http, https, ftp), or 'sqlite' for imported records." env:"FORECAST_SOURCE" default:"data/forecasts.csv"`
	DB        string                   `help:"Path to SQLite database." env:"FORECAST_DB" default:"data/forecastcards.db"`
	Icons     string                   `help:"Directory of weather icons (w_<type>.png)." env:"FORECAST_ICONS" default:"data/icons"`
	OpenAIKey string                   `help:"OpenAI API key for generating missing icons." env:"OPENAI_API_KEY" name:"openai-key"`
}

type CLI struct {
	Globals

	Serve  ServeCmd  `cmd:"" default:"1" help:"Serve the card viewer."`
	Import ImportCmd `cmd:"" help:"Import the dataset into SQLite."`
	Render RenderCmd `cmd:"" help:"Render every card of a view to PNG files."`
	Info   InfoCmd   `cmd:"" help:"Show the dataset's date ranges."`
	Export ExportCmd `cmd:"" help:"Export the dataset as Parquet."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("forecastcards"),
		kong.Description("Forecast card visualizer."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}

func openStore(path string) (*store.Store, func(), error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return st, func() { db.Close() }, nil
}

// source builds the session's record source from the global flags.
func (g *Globals) source() (ingest.SourceFunc, func(), error) {
	if g.Source == sourceSQLite {
		st, closeDB, err := openStore(g.DB)
		if err != nil {
			return nil, nil, err
		}
		return ingest.StoreSource(st), closeDB, nil
	}

	loc, err := ingest.ParseLocation(g.Source)
	if err != nil {
		return nil, nil, err
	}
	return ingest.LocationSource(ingest.NewFetcher(), loc), func() {}, nil
}

// load runs the one-time load and waits for it.
func (g *Globals) load(ctx context.Context) (*ingest.Dataset, error) {
	src, cleanup, err := g.source()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	loader := ingest.NewLoader(src)
	loader.Start(ctx)
	return loader.Wait(ctx)
}

func (g *Globals) renderer() *imagegen.Renderer {
	var gen imagegen.IconGenerator
	if g.OpenAIKey != "" {
		if og, err := imagegen.NewGenerator(g.OpenAIKey); err != nil {
			log.Printf("icon generation disabled: %v", err)
		} else {
			gen = og
		}
	}
	return imagegen.NewRenderer(imagegen.NewIconSet(g.Icons, gen))
}

type ServeCmd struct {
	Port      string        `help:"HTTP server port." env:"PORT" default:"8080"`
	Cache     string        `help:"Directory for cached card PNGs." env:"FORECAST_CACHE" default:"data/cards"`
	CacheTTL  time.Duration `help:"Maximum age of cached cards (0 keeps them forever)." name:"cache-ttl" default:"0s"`
	RenderRPS float64       `help:"Card renders allowed per second." name:"render-rps" env:"FORECAST_RENDER_RPS" default:"10"`
}

func (c *ServeCmd) Run(g *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, cleanup, err := g.source()
	if err != nil {
		return err
	}
	defer cleanup()

	loader := ingest.NewLoader(src)
	loader.Start(ctx)

	server := api.NewServer(loader, g.renderer(), imagegen.NewCache(c.Cache, c.CacheTTL), c.Port, c.RenderRPS)

	log.Printf("starting server on :%s", c.Port)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

type ImportCmd struct{}

func (c *ImportCmd) Run(g *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if g.Source == sourceSQLite {
		return fmt.Errorf("--source must name a dataset to import, not %q", sourceSQLite)
	}
	loc, err := ingest.ParseLocation(g.Source)
	if err != nil {
		return err
	}

	st, closeDB, err := openStore(g.DB)
	if err != nil {
		return err
	}
	defer closeDB()
	log.Println("database migrated")

	run, err := ingest.NewImporter(st, ingest.NewFetcher()).Import(ctx, loc)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	log.Printf("done: %d records stored, %d flagged", run.RecordsStored.Int64, run.InvalidRecords.Int64)
	return nil
}
