package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/metaads-dashboard/internal/config"
	"github.com/AngelCh415/metaads-dashboard/internal/export"
	"github.com/AngelCh415/metaads-dashboard/internal/ingest"
	"github.com/AngelCh415/metaads-dashboard/internal/logging"
	"github.com/AngelCh415/metaads-dashboard/internal/metrics"
	"github.com/AngelCh415/metaads-dashboard/internal/models"
)

// App is the adsctl command tree.
type App struct {
	rootCmd *cobra.Command
	cfg     config.Config
	log     *slog.Logger
	now     func() time.Time
}

func NewApp(version string) *App {
	app := &App{cfg: config.Default(), log: logging.Discard(), now: time.Now}

	root := &cobra.Command{
		Use:           "adsctl",
		Short:         "Campaign performance reports from CSV or Excel exports",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.loadConfig(cmd)
		},
	}
	root.SetVersionTemplate(`{{printf "adsctl version: %s\n" .Version}}`)
	root.PersistentFlags().StringP("config", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	root.PersistentFlags().StringP("file", "f", "", "CSV or XLSX file to read (default: built-in sample data)")

	root.AddCommand(app.summaryCmd(), app.exportCmd(), app.sampleCmd())
	app.rootCmd = root
	return app
}

func (app *App) Execute() error { return app.rootCmd.Execute() }

func (app *App) loadConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := config.ApplyFile(&app.cfg, path); err != nil {
			return err
		}
	}
	app.log = logging.ToWriter(cmd.ErrOrStderr(), app.cfg.LogLevel)
	return nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Last day to include (YYYY-MM-DD)")
	cmd.Flags().StringSlice("campaign", nil, "Campaigns to include (comma-separated)")
	cmd.Flags().StringSlice("adset", nil, "Ad sets to include (comma-separated)")
	cmd.Flags().StringSlice("ad", nil, "Ads to include (comma-separated)")
}

// view loads the dataset named by --file and applies the filter flags the
// same way the HTTP query string is applied.
func (app *App) view(cmd *cobra.Command) (metrics.View, error) {
	ds, err := app.dataset(cmd)
	if err != nil {
		return metrics.View{}, err
	}
	v := url.Values{"dataset": {ds.ID}}
	for _, name := range []string{"from", "to"} {
		if s, _ := cmd.Flags().GetString(name); s != "" {
			v.Set(name, s)
		}
	}
	for _, name := range []string{"campaign", "adset", "ad"} {
		if vals, _ := cmd.Flags().GetStringSlice(name); len(vals) > 0 {
			v[name] = vals
		}
	}
	q, err := metrics.ParseQuery(v)
	if err != nil {
		return metrics.View{}, err
	}
	f, err := q.Filter()
	if err != nil {
		return metrics.View{}, err
	}
	return metrics.View{Dataset: ds, Query: q, Filter: f, Records: metrics.Apply(ds.Records, f)}, nil
}

func (app *App) dataset(cmd *cobra.Command) (*models.Dataset, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		return ingest.SampleDataset(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > app.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", path, info.Size(), app.cfg.MaxUploadBytes)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	ds, err := ingest.Build(ingest.Parser{Now: app.now}, ingest.DatasetID(name, body), models.SourceUpload, name, body, app.now())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	app.log.Debug("dataset loaded", slog.String("file", path), slog.Int("records", len(ds.Records)))
	return ds, nil
}

func (app *App) summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print KPIs, campaign table and daily trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			vw, err := app.view(cmd)
			if err != nil {
				return err
			}
			trend, _ := cmd.Flags().GetBool("trend")
			return renderSummary(cmd.OutOrStdout(), metrics.Build(vw), trend)
		},
	}
	addFilterFlags(cmd)
	cmd.Flags().Bool("trend", true, "Show daily spend bars")
	return cmd
}

func (app *App) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered records to csv, json, xlsx or pdf files",
		RunE: func(cmd *cobra.Command, args []string) error {
			types, _ := cmd.Flags().GetStringSlice("format")
			dir, _ := cmd.Flags().GetString("dir")
			name, _ := cmd.Flags().GetString("name")

			formats, err := export.ParseFormats(strings.Join(types, ","))
			if err != nil {
				return err
			}
			vw, err := app.view(cmd)
			if err != nil {
				return err
			}
			in := export.NewInput(vw, app.now())
			for _, f := range formats {
				path, err := export.WriteFile(dir, name, f, in)
				if err != nil {
					return err
				}
				printSaved(cmd.OutOrStdout(), f, path)
			}
			return nil
		},
	}
	addFilterFlags(cmd)
	cmd.Flags().StringSliceP("format", "y", []string{"csv"}, "Report types: csv, json, xlsx, pdf")
	cmd.Flags().StringP("dir", "d", ".", "Directory to save the report files")
	cmd.Flags().StringP("name", "n", export.DefaultName, "Base name for the report files (without extension)")
	return cmd
}

func (app *App) sampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Dump the built-in sample dataset as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds := ingest.SampleDataset()
			out, _ := cmd.Flags().GetString("out")
			in := export.Input{Dataset: ds.Meta(), Records: ds.Records}
			if out == "" || out == "-" {
				return export.Write(cmd.OutOrStdout(), export.CSV, in)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.Write(f, export.CSV, in); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	return cmd
}

// SetOutput routes command output, mainly for tests.
func (app *App) SetOutput(out, errOut io.Writer) {
	app.rootCmd.SetOut(out)
	app.rootCmd.SetErr(errOut)
}

func (app *App) SetArgs(args []string) { app.rootCmd.SetArgs(args) }
