package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/richxcame/visit-pricing/internal/pricing"
	"github.com/richxcame/visit-pricing/internal/sheet"
	"github.com/richxcame/visit-pricing/pkg/config"
	"github.com/richxcame/visit-pricing/pkg/logger"
	redisClient "github.com/richxcame/visit-pricing/pkg/redis"
	"go.uber.org/zap"
)

const serviceName = "pricesheet"

func main() {
	var (
		inPath     = flag.String("in", "-", "CSV sheet export to read, - for stdin")
		outPath    = flag.String("out", "-", "CSV file to write, - for stdout")
		technician = flag.String("technician", "", "price a single technician day (requires -date)")
		date       = flag.String("date", "", "calendar day for -technician")
		row        = flag.Int("row", 0, "process an edit of this 1-based row")
		col        = flag.Int("col", 0, "1-based column of the edit; edits outside trigger columns are ignored")
		timeout    = flag.Duration("timeout", 2*time.Minute, "overall pricing deadline")
	)
	flag.Parse()

	cfg, err := config.Load(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Server.Environment, serviceName); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := run(ctx, cfg, *inPath, *outPath, *technician, *date, *row, *col); err != nil {
		logger.Error("pricesheet failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, inPath, outPath, technician, date string, row, col int) error {
	in, err := openInput(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	layout := sheet.LayoutFromConfig(cfg.Sheet)
	doc, err := sheet.Read(in, layout, cfg.Pricing.PremiumKeyword)
	if err != nil {
		return err
	}

	var cache redisClient.ClientInterface
	if cfg.Redis.Enabled {
		redis, err := redisClient.NewRedisClient(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redis.Close()
		cache = redis
	}

	components, err := pricing.Setup(cfg, cache)
	if err != nil {
		return err
	}
	svc := components.Service

	var values []pricing.WriteBack
	switch {
	case row > 0:
		if col > 0 && !layout.IsTrigger(row, col) {
			logger.Info("edit outside trigger columns, nothing to do", zap.Int("row", row), zap.Int("col", col))
			return writeOutput(outPath, doc)
		}
		jobs, err := doc.EditJobs(row)
		if err != nil {
			return err
		}
		result, err := svc.PriceEdit(ctx, jobs, strconv.Itoa(row))
		if err != nil {
			return err
		}
		values = result.Values

	case technician != "":
		day, err := sheet.ParseDate(date)
		if err != nil {
			return fmt.Errorf("-date: %w", err)
		}
		quote, err := svc.PriceDay(ctx, doc.Jobs(), technician, day)
		if err != nil {
			return err
		}
		values = quote.Values

	default:
		quotes, err := svc.PriceAll(ctx, doc.Jobs())
		if err != nil {
			return err
		}
		for _, q := range quotes {
			values = append(values, q.Values...)
		}
	}

	for _, v := range values {
		if err := doc.SetValue(v.JobID, v.Value()); err != nil {
			return err
		}
	}
	logger.Info("sheet priced", zap.Int("values", len(values)))

	return writeOutput(outPath, doc)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func writeOutput(path string, doc *sheet.Sheet) error {
	if path == "-" {
		return doc.Write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := doc.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
