package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tumorviz/config"
	telegram "tumorviz/internal/api"
	"tumorviz/internal/api/rest"
	app "tumorviz/internal/application"
	"tumorviz/internal/container"
	"tumorviz/internal/domain/entity"
	"tumorviz/internal/domain/port"
	"tumorviz/internal/infrastructure/chart"
	"tumorviz/internal/infrastructure/onnx"
	"tumorviz/internal/infrastructure/storage"
	"tumorviz/internal/infrastructure/vision"
	"tumorviz/internal/metrics"
	"tumorviz/internal/saliency"
)

func newBotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Запустить Telegram-бота",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.TelegramToken == "" {
				return errors.New("TELEGRAM_TOKEN is required")
			}

			appContainer, closeAll, err := build(cfg)
			if err != nil {
				return err
			}
			defer closeAll()

			if cfg.MetricsAddr != "" {
				go serveMetrics(ctx, cfg.MetricsAddr, appContainer.Metrics)
			}

			bot, err := telegram.NewBot(cfg.TelegramToken, appContainer)
			if err != nil {
				return fmt.Errorf("failed to create bot: %w", err)
			}

			log.Println("Bot is running...")
			return bot.Run(ctx)
		},
	}
}

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API анализа снимков",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if addr == "" {
				addr = cfg.HTTPAddr
			}

			appContainer, closeAll, err := build(cfg)
			if err != nil {
				return err
			}
			defer closeAll()

			srv := &http.Server{
				Addr:              addr,
				Handler:           rest.NewServer(appContainer).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go shutdownOnDone(ctx, srv)

			log.Printf("HTTP API listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "адрес HTTP API, по умолчанию HTTP_ADDR")
	return cmd
}

func newAnalyzeCommand() *cobra.Command {
	var (
		model     string
		chartPath string
	)

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Проанализировать один снимок и сохранить карту значимости",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			appContainer, closeAll, err := build(cfg)
			if err != nil {
				return err
			}
			defer closeAll()

			result, err := appContainer.AnalysisService.Analyze(cmd.Context(), model, entity.Upload{
				Filename: filepath.Base(args[0]),
				Data:     data,
			})
			if err != nil {
				return err
			}

			if chartPath != "" {
				png, err := chart.Probabilities(result.Prediction)
				if err != nil {
					return err
				}
				if err := os.WriteFile(chartPath, png, 0o644); err != nil {
					return err
				}
			}

			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "классификатор (xception или cnn), по умолчанию DEFAULT_MODEL")
	cmd.Flags().StringVar(&chartPath, "chart", "", "сохранить диаграмму вероятностей в PNG")
	return cmd
}

// build загружает модели и собирает сервисы. Возвращаемая функция
// закрывает сессии ONNX Runtime.
func build(cfg *config.Config) (*container.Container, func(), error) {
	policy, err := saliency.ParseDegeneratePolicy(cfg.DegeneratePolicy)
	if err != nil {
		return nil, nil, err
	}

	if err := onnx.InitEnvironment(cfg.ONNXLibraryPath); err != nil {
		return nil, nil, err
	}

	models, closers, err := loadModels(cfg.ModelMetadata())
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
		if err := onnx.DestroyEnvironment(); err != nil {
			log.Printf("Error destroying ONNX environment: %v", err)
		}
	}
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	defaultModel := cfg.DefaultModel
	if _, ok := models[defaultModel]; !ok {
		names := make([]string, 0, len(models))
		for name := range models {
			names = append(names, name)
		}
		sort.Strings(names)
		log.Printf("Default model %q is not loaded, using %q", defaultModel, names[0])
		defaultModel = names[0]
	}

	store, err := storage.NewFileArtifactStore(cfg.OutputDir)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	c := container.New(container.Deps{
		UserRepo:     storage.NewMemoryUserRepository(),
		Models:       models,
		DefaultModel: defaultModel,
		Renderer:     vision.NewRenderer(cfg.UseGoCV),
		Store:        store,
		Metrics:      metrics.New(),
		Options: app.SaliencyOptions{
			Margin:     cfg.MaskMargin,
			Percentile: cfg.ThresholdPercentile,
			Degenerate: policy,
		},
	})
	return c, closeAll, nil
}

// loadModels загружает модели параллельно и пропускает те, у которых
// нет файла метаданных. Хотя бы одна модель должна загрузиться.
func loadModels(meta map[string]string) (map[string]port.Classifier, []*onnx.Classifier, error) {
	var (
		mu      sync.Mutex
		models  = make(map[string]port.Classifier)
		closers []*onnx.Classifier
		g       errgroup.Group
	)

	for name, path := range meta {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			log.Printf("Model %s skipped: %s not found", name, path)
			continue
		}
		name, path := name, path
		g.Go(func() error {
			c, err := onnx.NewClassifier(path)
			if err != nil {
				return fmt.Errorf("load model %s: %w", name, err)
			}
			log.Printf("Model %s loaded from %s", name, path)

			mu.Lock()
			models[name] = c
			closers = append(closers, c)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, closers, err
	}
	if len(models) == 0 {
		return nil, closers, errors.New("no models loaded")
	}
	return models, closers, nil
}

func serveMetrics(ctx context.Context, addr string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go shutdownOnDone(ctx, srv)

	log.Printf("Metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Metrics server error: %v", err)
	}
}

func shutdownOnDone(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down %s: %v", srv.Addr, err)
	}
}

func printResult(w io.Writer, res *entity.AnalysisResult) {
	p := res.Prediction
	fmt.Fprintf(w, "model:      %s\n", res.Model)
	fmt.Fprintf(w, "prediction: %s (%.4f)\n\n", p.Label(), p.Confidence())

	var data [][]string
	for _, cp := range p.Ranked() {
		data = append(data, []string{cp.Label, strconv.FormatFloat(float64(cp.Probability), 'f', 4, 32)})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"CLASS", "PROBABILITY"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	fmt.Fprintf(w, "\nupload:     %s\n", res.Saliency.UploadPath)
	fmt.Fprintf(w, "saliency:   %s\n", res.Saliency.CompositePath)
	if h := res.Saliency.Hotspot; !h.Empty() {
		fmt.Fprintf(w, "hotspot:    x=%d y=%d w=%d h=%d area=%d\n", h.X, h.Y, h.Width, h.Height, h.Area)
	}
	if res.Explanation != "" {
		fmt.Fprintf(w, "explanation: %s\n", res.Explanation)
	}
}
