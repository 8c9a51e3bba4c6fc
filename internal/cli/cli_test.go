package cli

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/kpi-server/internal/config"
	handler "github.com/godilite/kpi-server/internal/grpc"
	"github.com/godilite/kpi-server/internal/repository"
	"github.com/godilite/kpi-server/internal/service"
	dbbuilder "github.com/godilite/kpi-server/pkg/database"
	grpcsrv "github.com/godilite/kpi-server/pkg/grpc/server"
)

const (
	dailySheet = "EMP ID,NAME,Date,Week,Call Count,AHT,Wrap,Hold,Auto On,CSAT Resolution,CSAT Behaviour\n" +
		"1070,Asha,2025-10-13,42,12,00:05:30,0:20,0:30,7:00:00,90%,95%\n" +
		"2040,Ravi,2025-10-13,42,10,00:06:00,0:40,1:00,6:00:00,70%,80%\n"

	csatSheet = "EMP ID,NAME,Week,CSAT Resolution,CSAT Behaviour\n" +
		"1070,Asha,42,90%,95%\n" +
		"2040,Ravi,42,70%,80%\n"

	monthlySheet = "EMP ID,NAME,Month,Hold,Wrap,Auto-On,PKT,Grand Total,Target Committed for PKT\n" +
		"1070,Asha,September,0:00:40,0:00:25,6:50:00,85%,3.85,\n" +
		"1070,Asha,October,0:00:30,0:00:20,7:00:00,90%,4.2,95%\n"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// startServer serves the dashboard from the SQLite file at dbPath on a free port.
func startServer(t *testing.T, dbPath string) string {
	t.Helper()

	db, err := dbbuilder.New(
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(dbPath),
		dbbuilder.WithInitStatements(repository.Schema),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := service.NewKPIService(repository.NewKPIRepository(db), zap.NewNop())
	handlers := handler.NewGRPCHandlers(svc, nil, zap.NewNop(), time.Minute)

	server, err := grpcsrv.New(grpcsrv.WithPort(0), grpcsrv.WithLogging(true))
	require.NoError(t, err)
	server.RegisterServiceWithHealth(handler.KPIDashboardServiceName, func(s grpc.ServiceRegistrar) {
		handler.RegisterKPIDashboardServer(s, handlers)
	})
	server.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})

	return fmt.Sprintf("127.0.0.1:%d", server.Addr().(*net.TCPAddr).Port)
}

func TestImportAndQuery(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "kpi.db")
	cfg := &config.Config{DBDriver: "sqlite3", DBPath: dbPath}

	out, err := run(t, cfg, "import",
		"--daily", writeFile(t, dir, "daily.csv", dailySheet),
		"--csat", writeFile(t, dir, "csat.csv", csatSheet),
		"--monthly", writeFile(t, dir, "monthly.csv", monthlySheet),
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported into "+dbPath)
	assert.Contains(t, out, "daily")
	assert.Contains(t, out, "monthly")

	addr := startServer(t, dbPath)

	t.Run("top performers", func(t *testing.T) {
		out, err := run(t, cfg, "top", "--week", "42", "--addr", addr)
		require.NoError(t, err)

		assert.Contains(t, out, "Top performers, week 42")
		assert.Contains(t, out, "100.0")
		assert.Less(t, strings.Index(out, "Asha"), strings.Index(out, "Ravi"))
	})

	t.Run("top performers limit", func(t *testing.T) {
		out, err := run(t, cfg, "top", "--week", "42", "--limit", "1", "--addr", addr)
		require.NoError(t, err)

		assert.Contains(t, out, "Asha")
		assert.NotContains(t, out, "Ravi")
	})

	t.Run("weekly summary", func(t *testing.T) {
		out, err := run(t, cfg, "week", "1070", "42", "--addr", addr)
		require.NoError(t, err)

		assert.Contains(t, out, "Asha (EMP ID 1070), week 42")
		assert.Contains(t, out, "Total Calls")
		assert.Contains(t, out, "95.0%")
	})

	t.Run("daily summary", func(t *testing.T) {
		out, err := run(t, cfg, "day", "2040", "2025-10-13", "--addr", addr)
		require.NoError(t, err)

		assert.Contains(t, out, "Ravi (EMP ID 2040), 2025-10-13")
		assert.Contains(t, out, "Call Count")
	})

	t.Run("monthly summary", func(t *testing.T) {
		out, err := run(t, cfg, "month", "1070", "october", "--addr", addr)
		require.NoError(t, err)

		assert.Contains(t, out, "Asha (EMP ID 1070), October")
		assert.Contains(t, out, "Grand Total KPI: 4.2")
		assert.Contains(t, out, "Improved by +0.35 points since September.")
		assert.Contains(t, out, "Target Committed for PKT")
	})

	t.Run("first month has no change line", func(t *testing.T) {
		out, err := run(t, cfg, "month", "1070", "September", "--addr", addr)
		require.NoError(t, err)

		assert.NotContains(t, out, "since")
		assert.Contains(t, out, "No target data available.")
	})

	t.Run("periods", func(t *testing.T) {
		out, err := run(t, cfg, "periods", "--addr", addr)
		require.NoError(t, err)

		assert.Contains(t, out, "2025-10-13")
		assert.Contains(t, out, "September, October")
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := run(t, cfg, "week", "9999", "42", "--addr", addr)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "NotFound")
	})
}

func TestImportAppend(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "kpi.db")
	cfg := &config.Config{DBDriver: "sqlite3", DBPath: dbPath}
	csat := writeFile(t, dir, "csat.csv", csatSheet)

	_, err := run(t, cfg, "import", "--csat", csat)
	require.NoError(t, err)
	_, err = run(t, cfg, "import", "--csat", csat, "--append")
	require.NoError(t, err)

	db, err := dbbuilder.New(dbbuilder.WithDriver("sqlite3"), dbbuilder.WithDataSource(dbPath))
	require.NoError(t, err)
	defer db.Close()

	records, err := repository.NewKPIRepository(db).GetCSATRecords(context.Background(), "42")
	require.NoError(t, err)
	assert.Len(t, records, 4)

	_, err = run(t, cfg, "import", "--csat", csat)
	require.NoError(t, err)
	records, err = repository.NewKPIRepository(db).GetCSATRecords(context.Background(), "42")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{DBDriver: "sqlite3", DBPath: filepath.Join(dir, "kpi.db")}

	_, err := run(t, cfg, "import")
	assert.ErrorContains(t, err, "nothing to import")

	_, err = run(t, cfg, "import", "--daily", filepath.Join(dir, "missing.csv"))
	assert.ErrorContains(t, err, "import daily sheet")

	bad := writeFile(t, dir, "bad.csv", "NAME,Week\nAsha,42\n")
	_, err = run(t, cfg, "import", "--csat", bad)
	assert.ErrorContains(t, err, "missing column")
}

func TestQueryArgs(t *testing.T) {
	cfg := &config.Config{GRPCPort: 50051}

	_, err := run(t, cfg, "week", "1070")
	assert.Error(t, err)

	_, err = run(t, cfg, "month")
	assert.Error(t, err)
}

func TestChangeLine(t *testing.T) {
	tests := []struct {
		name  string
		delta float64
		want  string
	}{
		{"improved", 0.35, "Improved by +0.35 points since September."},
		{"dropped", -0.3, "Dropped by 0.3 points since September."},
		{"unchanged", 0, "No change from September."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := mustStruct(t, map[string]any{"month": "September", "delta": tt.delta})
			assert.Contains(t, changeLine(prev), tt.want)
		})
	}
	assert.Empty(t, changeLine(nil))
}

func TestTimeoutOrDefault(t *testing.T) {
	assert.Equal(t, 5*time.Second, timeoutOrDefault(0))
	assert.Equal(t, 5*time.Second, timeoutOrDefault(-time.Second))
	assert.Equal(t, time.Second, timeoutOrDefault(time.Second))
}
