package agent

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/mohitkumar/commonevent/analytics"
	"github.com/mohitkumar/commonevent/config"
	"github.com/mohitkumar/commonevent/engine"
	"github.com/mohitkumar/commonevent/logger"
	"github.com/mohitkumar/commonevent/metadata"
	"github.com/mohitkumar/commonevent/metrics"
	"github.com/mohitkumar/commonevent/model"
	"github.com/mohitkumar/commonevent/persistence"
	"github.com/mohitkumar/commonevent/persistence/file"
	"github.com/mohitkumar/commonevent/persistence/redis"
	"github.com/mohitkumar/commonevent/rest"
	"github.com/mohitkumar/commonevent/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Agent struct {
	Config          config.Config
	metadataStorage metadata.MetadataStorage
	metadataService *metadata.MetadataServiceImpl
	saveStorage     persistence.SaveStorage
	engine          *engine.Engine
	httpServer      *rest.Server
	closers         []io.Closer
	ctx             context.Context
	cancel          context.CancelFunc
	group           *errgroup.Group
	shutdown        bool
	shutdownLock    sync.Mutex
}

func New(conf config.Config) (*Agent, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	a := &Agent{
		Config: conf,
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	setup := []func() error{
		a.setupLogger,
		a.setupAnalytics,
		a.setupMetrics,
		a.setupMetadata,
		a.setupSaveStorage,
		a.setupEngine,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			a.cancel()
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupLogger() error {
	if a.Config.LogLevel == "" {
		return nil
	}
	return logger.SetLevel(a.Config.LogLevel)
}

func (a *Agent) setupAnalytics() error {
	return analytics.InitDataCollector(a.Config.AnalyticsConfig)
}

func (a *Agent) setupMetrics() error {
	return metrics.RegisterViews()
}

func (a *Agent) setupMetadata() error {
	if a.Config.DatabasePath != "" {
		fs, err := metadata.NewFileStorage(a.Config.DatabasePath)
		if err != nil {
			return err
		}
		a.metadataStorage = fs
	} else {
		rs := redis.NewRedisMetadataStorage(redis.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
		})
		a.closers = append(a.closers, rs)
		a.metadataStorage = rs
	}
	a.metadataService = metadata.NewMetadataService(a.metadataStorage)
	return nil
}

func (a *Agent) setupSaveStorage() error {
	encoderDecoder := util.NewJsonEncoderDecoder[model.SaveGame]()
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_REDIS:
		rs := redis.NewRedisSaveStorage(redis.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
		}, encoderDecoder)
		a.closers = append(a.closers, rs)
		a.saveStorage = rs
	default:
		fs, err := file.NewFileSaveStorage(file.Config{
			Dir:      a.Config.FileConfig.Dir,
			Compress: a.Config.FileConfig.Compress,
		}, encoderDecoder)
		if err != nil {
			return err
		}
		a.saveStorage = fs
	}
	return nil
}

func (a *Agent) setupEngine() error {
	table, err := a.metadataService.Load()
	if err != nil {
		return err
	}
	a.engine = engine.New(table, a.saveStorage, engine.Config{
		MaxCommandsPerUpdate: a.Config.MaxCommandsPerUpdate,
		ScriptTimeout:        a.Config.ScriptTimeout,
		MaxSwitchId:          a.Config.MaxSwitchId,
		MaxVariableId:        a.Config.MaxVariableId,
	})
	if a.Config.LoadSlot != "" {
		if _, err := a.engine.Load(a.Config.LoadSlot); err != nil {
			return err
		}
	}
	return nil
}

func (a *Agent) setupHttpServer() error {
	if a.Config.HttpPort <= 0 {
		return nil
	}
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.metadataService, a.engine)
	return err
}

func (a *Agent) Engine() *engine.Engine {
	return a.engine
}

// Start runs the engine on its tick worker and serves the http api.
func (a *Agent) Start() error {
	a.group, _ = errgroup.WithContext(a.ctx)
	if a.Config.Watch {
		if err := a.watch(); err != nil {
			return err
		}
	}
	a.engine.Start(a.Config.TickRate)
	if a.httpServer != nil {
		a.group.Go(a.httpServer.Start)
	}
	return nil
}

// RunTicks steps the engine n times on the calling goroutine.
func (a *Agent) RunTicks(n int) {
	for i := 0; i < n; i++ {
		a.engine.Step()
	}
	logger.Info("finished running ticks", zap.Int("ticks", n), zap.Int64("tick", a.engine.Tick()))
}

// Wait blocks until a served component fails or the agent shuts down.
func (a *Agent) Wait() error {
	if a.group == nil {
		return nil
	}
	return a.group.Wait()
}

func (a *Agent) watch() error {
	fs, ok := a.metadataStorage.(*metadata.FileStorage)
	if !ok {
		logger.Warn("database watch needs a database file, ignoring")
		return nil
	}
	return fs.Watch(a.ctx, func() {
		table, err := a.metadataService.Load()
		if err != nil {
			logger.Error("reloaded database is invalid, keeping current one", zap.Error(err))
			return
		}
		a.engine.Reload(table)
	})
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true
	a.cancel()

	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	a.engine.Stop()
	if a.Config.SaveSlot != "" {
		if _, err := a.engine.Save(a.Config.SaveSlot); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.Wait(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, a.close()...)
	metrics.UnregisterViews()
	_ = analytics.Sync()
	_ = logger.Sync()
	return errors.Join(errs...)
}

func (a *Agent) close() []error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errs
}
