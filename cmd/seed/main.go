// seed carga materias primas y sus lotes iniciales desde un CSV exportado de la hoja de
// inventario. Cada lote pasa por la recepción normal del ledger, así el total agregado
// queda igual a la suma de los lotes.
//
// Uso: go run ./cmd/seed [-latin1] [ruta/materiales.csv]
// Columnas (separador ';', con encabezado): nombre;tipo;codigo_lote;cantidad;unidad;ubicacion
// Filas con el mismo nombre comparten la materia; el orden de las filas es el orden FIFO.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/manufactura-api/internal/application/inventory"
	"github.com/jhoicas/manufactura-api/internal/domain/entity"
	"github.com/jhoicas/manufactura-api/internal/infrastructure/postgres"
	"github.com/jhoicas/manufactura-api/pkg/config"
	"github.com/jhoicas/manufactura-api/pkg/logger"
)

type row struct {
	name, category, code, unit, location string
	quantity                             decimal.Decimal
}

func main() {
	latin1 := flag.Bool("latin1", false, "el archivo viene en ISO-8859-1 (Excel en Windows)")
	flag.Parse()
	path := "materiales.csv"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var in io.Reader = f
	if *latin1 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	rows, err := readRows(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	ctx := context.Background()

	if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	runner := postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout)
	repos := runner.Repos()
	ledger := inventory.NewLedger(runner, repos, inventory.Options{Logger: log})

	materials := make(map[string]int64)
	for _, r := range rows {
		id, ok := materials[r.name]
		if !ok {
			m := &entity.Material{Name: r.name, Category: r.category}
			if err := repos.Materials.Create(ctx, m); err != nil {
				log.Fatal().Err(err).Str("material", r.name).Msg("crear materia prima")
			}
			id = m.ID
			materials[r.name] = id
		}
		b, err := ledger.Receive(ctx, inventory.ReceiveRequest{
			MaterialID: id,
			Code:       r.code,
			Quantity:   r.quantity,
			Unit:       r.unit,
			Location:   r.location,
			UserID:     "seed",
		})
		if err != nil {
			log.Fatal().Err(err).Str("material", r.name).Str("code", r.code).Msg("recibir lote")
		}
		fmt.Printf("%-30s %-20s %s %s\n", r.name, b.Code, b.Quantity.String(), b.Unit)
	}
	fmt.Printf("%d materias, %d lotes\n", len(materials), len(rows))
}

func readRows(in io.Reader) ([]row, error) {
	cr := csv.NewReader(in)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("archivo vacío")
	}

	var out []row
	for i, rec := range records[1:] {
		if len(rec) < 5 {
			return nil, fmt.Errorf("fila %d: se esperaban al menos 5 columnas", i+2)
		}
		// Excel en español exporta la coma decimal
		qty, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(rec[3]), ",", "."))
		if err != nil {
			return nil, fmt.Errorf("fila %d: cantidad %q: %w", i+2, rec[3], err)
		}
		r := row{
			name:     strings.TrimSpace(rec[0]),
			category: strings.TrimSpace(rec[1]),
			code:     strings.TrimSpace(rec[2]),
			quantity: qty,
			unit:     strings.TrimSpace(rec[4]),
		}
		if len(rec) > 5 {
			r.location = strings.TrimSpace(rec[5])
		}
		if r.name == "" || r.code == "" {
			return nil, fmt.Errorf("fila %d: nombre y código de lote son obligatorios", i+2)
		}
		out = append(out, r)
	}
	return out, nil
}
