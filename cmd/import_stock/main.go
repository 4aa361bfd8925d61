// import_stock carga cantidades de stock desde un CSV (product_id, store_id, quantity).
//
// Uso: go run ./cmd/import_stock [-charset windows-1251] [-sep ';'] [-dry-run] stock.csv
//
// Los exportes de sistemas anteriores llegan en windows-1251 o ISO-8859-1 con cabeceras en cirílico;
// la primera fila se descarta si su primer campo no es numérico. Cada fila es un upsert,
// así que repetir la carga deja el mismo estado.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/purchases-api/internal/application/stock"
	"github.com/jhoicas/purchases-api/internal/infrastructure/postgres"
	"github.com/jhoicas/purchases-api/pkg/config"
	"github.com/jhoicas/purchases-api/pkg/logger"
)

func main() {
	charset := flag.String("charset", "utf-8", "codificación del archivo: utf-8, windows-1251, iso-8859-1")
	sep := flag.String("sep", ",", "separador de campos")
	dryRun := flag.Bool("dry-run", false, "solo valida el archivo, no escribe en la BD")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: import_stock [flags] archivo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name}).Named("import_stock")

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	if len(*sep) != 1 {
		log.Fatal().Str("sep", *sep).Msg("el separador debe ser un solo carácter")
	}
	rows, err := parseStockCSV(f, *charset, rune((*sep)[0]))
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}
	log.Info().Int("filas", len(rows)).Str("charset", *charset).Msg("archivo válido")
	if *dryRun {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	uc := stock.NewStockUseCase(postgres.NewStockRepository(pool))
	if err := importRows(ctx, uc, rows, log); err != nil {
		log.Fatal().Err(err).Msg("importación incompleta")
	}
	log.Info().Int("filas", len(rows)).Msg("stock importado")
}
