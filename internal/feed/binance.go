package feed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"gridsim/pkg/retry"
)

// BinanceConfig selects the historical kline window to replay.
type BinanceConfig struct {
	Symbol   string
	Interval string // kline interval, e.g. "1m", "1h"
	Limit    int    // number of klines, capped at 1000
}

// BinanceSource fetches historical klines from Binance spot and replays their
// close prices. No API credentials are required for public market data.
type BinanceSource struct {
	client *binance.Client
	cfg    BinanceConfig
	policy retry.Policy
}

// NewBinanceSource builds an unauthenticated client for public kline data.
func NewBinanceSource(cfg BinanceConfig) *BinanceSource {
	if cfg.Interval == "" {
		cfg.Interval = "1m"
	}
	if cfg.Limit <= 0 || cfg.Limit > 1000 {
		cfg.Limit = 500
	}
	return &BinanceSource{
		client: binance.NewClient("", ""),
		cfg:    cfg,
		policy: retry.DefaultPolicy,
	}
}

func (s *BinanceSource) Name() string { return "binance" }

// Fetch downloads the kline window and returns the close price of each kline
// with its close timestamp. Transient network errors are retried with backoff.
func (s *BinanceSource) Fetch(ctx context.Context) ([]float64, []time.Time, error) {
	if s.cfg.Symbol == "" {
		return nil, nil, fmt.Errorf("binance source: symbol must not be empty")
	}

	var klines []*binance.Kline
	err := retry.Do(ctx, s.policy, isTransientNetErr, func() error {
		var err error
		klines, err = s.client.NewKlinesService().
			Symbol(s.cfg.Symbol).
			Interval(s.cfg.Interval).
			Limit(s.cfg.Limit).
			Do(ctx)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch klines for %s: %w", s.cfg.Symbol, err)
	}

	prices := make([]float64, 0, len(klines))
	timestamps := make([]time.Time, 0, len(klines))
	for _, k := range klines {
		close, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse close price %q: %w", k.Close, err)
		}
		prices = append(prices, close)
		timestamps = append(timestamps, time.UnixMilli(k.CloseTime))
	}
	return prices, timestamps, nil
}

func isTransientNetErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		// -1003 is the rate-limit code, -1000/-1001 are internal errors.
		return apiErr.Code == -1003 || apiErr.Code == -1000 || apiErr.Code == -1001
	}
	return false
}
