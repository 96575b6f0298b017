package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/rfmartins/daycast/internal/analysis"
	"github.com/rfmartins/daycast/internal/api"
	"github.com/rfmartins/daycast/internal/ingest"
	"github.com/rfmartins/daycast/internal/narrative"
	"github.com/rfmartins/daycast/internal/store"
)

type cliArgs struct {
	DB          string  `kong:"default='data/daycast.db',help='Path to SQLite database.'"`
	Port        string  `kong:"default='8080',env='PORT',help='HTTP server port.'"`
	Latitude    float64 `kong:"required,env='LOCATION_LATITUDE',help='Location latitude.'"`
	Longitude   float64 `kong:"required,env='LOCATION_LONGITUDE',help='Location longitude.'"`
	Timezone    string  `kong:"default='America/Sao_Paulo',env='LOCATION_TIMEZONE',help='IANA timezone of the location.'"`
	IngestCron  string  `kong:"default='0 * * * *',env='INGEST_CRON',help='Cron spec for forecast ingestion.'"`
	AnalyzeCron string  `kong:"default='5 * * * *',env='ANALYZE_CRON',help='Cron spec for report analysis.'"`
	NoPoll      bool    `kong:"help='Disable scheduled jobs (server only, for local dev).'"`
	Once        bool    `kong:"help='Ingest and analyze once, then exit.'"`
}

func main() {
	var cli cliArgs
	kong.Parse(&cli, kong.Configuration(kongdotenv.ENVFileReader, ".env"))

	loc, err := time.LoadLocation(cli.Timezone)
	if err != nil {
		log.Fatalf("load timezone %s: %v", cli.Timezone, err)
	}

	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db, loc)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	client := ingest.NewOpenMeteo(cli.Latitude, cli.Longitude, cli.Timezone)
	pipeline := analysis.NewPipeline(loc)
	scheduler := ingest.NewScheduler(st, client, pipeline, loc, cli.IngestCron, cli.AnalyzeCron)
	server := api.NewServer(st, scheduler, cli.Port, loc)

	if gen, err := narrative.NewGenerator(); err != nil {
		log.Printf("narrative generation disabled: %v", err)
	} else {
		scheduler.SetNarrator(gen)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cli.Once {
		log.Println("running single ingestion and analysis")
		if err := scheduler.IngestOnce(ctx); err != nil {
			log.Fatalf("ingest: %v", err)
		}
		if err := scheduler.TryAnalyze(ctx); err != nil {
			log.Fatalf("analyze: %v", err)
		}
		log.Println("done")
		return
	}

	if !cli.NoPoll {
		if err := scheduler.Start(ctx); err != nil {
			log.Fatalf("scheduler: %v", err)
		}
		defer scheduler.Stop()
	} else {
		log.Println("scheduled jobs disabled (--no-poll)")
	}

	log.Printf("starting server on :%s", cli.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
