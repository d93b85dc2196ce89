package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sd "github.com/coreos/go-systemd/v22/daemon"

	"tickd/internal/config"
	"tickd/internal/eventbus"
	"tickd/internal/history"
	"tickd/internal/manager"
	"tickd/internal/service/builtin"
	"tickd/pkg/logx"
)

const shutdownTimeout = 30 * time.Second

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config file (yaml or json)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfgPath); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string) error {
	cfgMgr := config.NewManager(cfgPath)
	cfg, err := cfgMgr.Load()
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	logSvc, log := logx.New(cfg.Logx())
	defer logSvc.Close()
	cfgMgr.SetLogger(log)

	histCfg, err := cfg.HistoryStore()
	if err != nil {
		return err
	}
	store, err := history.Open(histCfg, log)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	reg, err := builtin.Registry(cfg, store)
	if err != nil {
		return err
	}

	bus := eventbus.New()
	mgr := manager.New(reg,
		manager.WithLogger(log),
		manager.WithBus(bus),
		manager.WithHistory(store),
	)

	if err := mgr.StartAll(ctx); err != nil {
		log.Warn("some services failed to start", logx.Err(err))
	}
	log.Info("tickd started", logx.Int("services", reg.Len()), logx.String("config", cfgPath))

	// Reject configs that would not produce a buildable registry before they
	// are ever published.
	cfgMgr.SetValidator(func(vctx context.Context, c *config.Config) error {
		_, err := builtin.Registry(c, store)
		return err
	})
	go func() { _ = cfgMgr.Watch(ctx) }()

	updates := cfgMgr.Subscribe(1)
	defer cfgMgr.Unsubscribe(updates)

	_, _ = sd.SdNotify(false, sd.SdNotifyReady)

	prev := cfg
	for {
		select {
		case <-ctx.Done():
			_, _ = sd.SdNotify(false, sd.SdNotifyStopping)
			stopCtx, cancelStop := context.WithTimeout(context.Background(), shutdownTimeout)
			err := mgr.Close(stopCtx)
			cancelStop()
			if err != nil {
				log.Warn("shutdown incomplete", logx.Err(err))
			}
			log.Info("tickd stopped")
			return nil

		case next := <-updates:
			if next == nil {
				continue
			}
			// Logging changes apply in place.
			logSvc.Apply(next.Logx())

			// Changed service declarations need fresh instances; the registry
			// is immutable, so rebuild the manager around the new config.
			changed := config.ChangedServices(prev, next)
			if len(changed) > 0 {
				log.Info("service declarations changed; restarting", logx.Any("services", changed))
				stopCtx, cancelStop := context.WithTimeout(ctx, shutdownTimeout)
				if err := mgr.Close(stopCtx); err != nil {
					log.Warn("restart stop incomplete", logx.Err(err))
				}
				cancelStop()

				reg, err = builtin.Registry(next, store)
				if err != nil {
					// The validator screens for this; a failure here leaves
					// everything stopped, which is the safe state.
					log.Error("rebuild registry failed", logx.Err(err))
					prev = next
					continue
				}
				mgr = manager.New(reg,
					manager.WithLogger(log),
					manager.WithBus(bus),
					manager.WithHistory(store),
				)
				if err := mgr.StartAll(ctx); err != nil {
					log.Warn("some services failed to restart", logx.Err(err))
				}
			}
			prev = next
		}
	}
}
