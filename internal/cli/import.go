package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/godilite/kpi-server/internal/config"
	"github.com/godilite/kpi-server/internal/loader"
	"github.com/godilite/kpi-server/internal/repository"
	"github.com/godilite/kpi-server/pkg/cache"
	dbbuilder "github.com/godilite/kpi-server/pkg/database"
)

type importOptions struct {
	dbDriver string
	dbPath   string

	daily   string
	csat    string
	monthly string
	append  bool

	redisAddr     string
	redisPassword string
	redisDB       int
	redisPrefix   string
}

func newImportCmd(cfg *config.Config) *cobra.Command {
	opts := importOptions{
		dbDriver:      cfg.DBDriver,
		redisPassword: cfg.RedisPassword,
		redisDB:       cfg.RedisDB,
		redisPrefix:   cfg.RedisKeyPrefix,
	}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load sheet CSV exports into the dashboard database",
		Long: `Load CSV exports of the KPI sheets into the dashboard database. Each sheet
replaces its table unless --append is given. When a Redis address is set the
dashboard cache is purged afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", cfg.DBPath, "SQLite database path")
	cmd.Flags().StringVar(&opts.daily, "daily", "", "Daily sheet CSV export")
	cmd.Flags().StringVar(&opts.csat, "csat", "", "Weekly CSAT sheet CSV export")
	cmd.Flags().StringVar(&opts.monthly, "monthly", "", "Monthly KPI sheet CSV export")
	cmd.Flags().BoolVar(&opts.append, "append", false, "Append rows instead of replacing each table")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", cfg.RedisAddr, "Redis address to purge after import (empty to skip)")
	return cmd
}

type importStep struct {
	sheet string
	path  string
	run   func(ctx context.Context, repo *repository.KPIRepository, f io.Reader, replace bool) (int64, error)
}

func runImport(ctx context.Context, out io.Writer, opts importOptions) error {
	steps := []importStep{
		{"daily", opts.daily, func(ctx context.Context, repo *repository.KPIRepository, f io.Reader, replace bool) (int64, error) {
			records, err := loader.ReadDaily(f)
			if err != nil {
				return 0, err
			}
			return repo.ImportDaily(ctx, records, replace)
		}},
		{"csat", opts.csat, func(ctx context.Context, repo *repository.KPIRepository, f io.Reader, replace bool) (int64, error) {
			records, err := loader.ReadCSAT(f)
			if err != nil {
				return 0, err
			}
			return repo.ImportCSAT(ctx, records, replace)
		}},
		{"monthly", opts.monthly, func(ctx context.Context, repo *repository.KPIRepository, f io.Reader, replace bool) (int64, error) {
			records, err := loader.ReadMonthly(f)
			if err != nil {
				return 0, err
			}
			return repo.ImportMonthly(ctx, records, replace)
		}},
	}

	if opts.daily == "" && opts.csat == "" && opts.monthly == "" {
		return fmt.Errorf("nothing to import: pass at least one of --daily, --csat, --monthly")
	}

	dataCfg := config.Config{DBDriver: opts.dbDriver, DBPath: opts.dbPath}
	if err := dataCfg.EnsureDataDir(); err != nil {
		return err
	}

	db, err := dbbuilder.New(
		dbbuilder.WithDriver(opts.dbDriver),
		dbbuilder.WithDataSource(opts.dbPath),
		dbbuilder.WithMaxOpenConns(1),
		dbbuilder.WithRetry(1, 0),
		dbbuilder.WithInitStatements(repository.Schema),
	)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	repo := repository.NewKPIRepository(db)

	var rows [][]string
	for _, step := range steps {
		if step.path == "" {
			continue
		}
		n, err := importFile(ctx, repo, step, !opts.append)
		if err != nil {
			return fmt.Errorf("import %s sheet: %w", step.sheet, err)
		}
		rows = append(rows, []string{step.sheet, step.path, strconv.FormatInt(n, 10)})
	}

	printTitle(out, "Imported into "+opts.dbPath)
	printTable(out, []string{"Sheet", "File", "Rows"}, rows)

	if opts.redisAddr == "" {
		return nil
	}
	purgeCache(ctx, out, opts)
	return nil
}

func importFile(ctx context.Context, repo *repository.KPIRepository, step importStep, replace bool) (int64, error) {
	f, err := os.Open(step.path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return step.run(ctx, repo, f, replace)
}

// purgeCache drops cached dashboard responses. An unreachable Redis is reported
// but does not fail the import.
func purgeCache(ctx context.Context, out io.Writer, opts importOptions) {
	c, err := cache.New(ctx,
		cache.WithAddress(opts.redisAddr),
		cache.WithPassword(opts.redisPassword),
		cache.WithDB(opts.redisDB),
		cache.WithKeyPrefix(opts.redisPrefix),
	)
	if err != nil {
		fmt.Fprintln(out, badStyle.Render("Cache not purged: "+err.Error()))
		return
	}
	defer c.Close()

	n, err := c.Purge(ctx)
	if err != nil {
		fmt.Fprintln(out, badStyle.Render("Cache purge failed: "+err.Error()))
		return
	}
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Purged %d cached responses.", n)))
}
