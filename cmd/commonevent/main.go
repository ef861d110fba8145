package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mohitkumar/commonevent/agent"
	"github.com/mohitkumar/commonevent/analytics"
	"github.com/mohitkumar/commonevent/config"
	"github.com/mohitkumar/commonevent/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type cfg struct {
	config.Config
}
type cli struct {
	cfg cfg
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().String("database", "commonevents.yaml", "common event database file (yaml or json), empty to read definitions from redis")
	cmd.Flags().String("storage-impl", "file", "save storage implementation, file or redis")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("namespace", "commonevent", "namespace used in redis")
	cmd.Flags().String("save-dir", "saves", "directory of file save slots")
	cmd.Flags().Bool("compress", false, "lz4 compress file save slots")
	cmd.Flags().Int("http-port", 8080, "http port for rest endpoints, 0 disables")
	cmd.Flags().Duration("tick-rate", 16*time.Millisecond, "interval between simulation steps")
	cmd.Flags().Int("max-commands", 10000, "command budget of one interpreter update")
	cmd.Flags().Duration("script-timeout", time.Second, "time a single script command may run before it is interrupted")
	cmd.Flags().Int("max-switch-id", 5000, "highest switch id, at most 100000")
	cmd.Flags().Int("max-variable-id", 5000, "highest variable id, at most 100000")
	cmd.Flags().String("load-slot", "", "save slot to resume at start")
	cmd.Flags().String("save-slot", "", "save slot written at shutdown")
	cmd.Flags().Int("ticks", 0, "run this many steps and exit, 0 runs until interrupted")
	cmd.Flags().Bool("watch", false, "reload the database file when it changes")
	cmd.Flags().String("log-level", "info", "log level")
	cmd.Flags().String("encoder-decoder", "JSON", "encoder decoder used to serialize saves")
	cmd.Flags().String("analytics-file", "", "write one line per executed command to this file")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	var err error

	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	viper.SetConfigFile(configFile)

	if err = viper.ReadInConfig(); err != nil {
		// it's ok if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			return err
		}
	}

	c.cfg.DatabasePath = viper.GetString("database")
	c.cfg.StorageType = config.StorageType(viper.GetString("storage-impl"))
	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.FileConfig.Dir = viper.GetString("save-dir")
	c.cfg.FileConfig.Compress = viper.GetBool("compress")
	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.TickRate = viper.GetDuration("tick-rate")
	c.cfg.MaxCommandsPerUpdate = viper.GetInt("max-commands")
	c.cfg.ScriptTimeout = viper.GetDuration("script-timeout")
	c.cfg.MaxSwitchId = viper.GetInt("max-switch-id")
	c.cfg.MaxVariableId = viper.GetInt("max-variable-id")
	c.cfg.LoadSlot = viper.GetString("load-slot")
	c.cfg.SaveSlot = viper.GetString("save-slot")
	c.cfg.Ticks = viper.GetInt("ticks")
	c.cfg.Watch = viper.GetBool("watch")
	c.cfg.LogLevel = viper.GetString("log-level")
	c.cfg.EncoderDecoderType = config.EncoderDecoderType(viper.GetString("encoder-decoder"))
	if file := viper.GetString("analytics-file"); file != "" {
		c.cfg.AnalyticsConfig = analytics.DataCollectorConfig{
			FileName:      file,
			CollectorType: analytics.LOG_FILE_DATA_COLLECTOR,
		}
	} else {
		c.cfg.AnalyticsConfig.CollectorType = analytics.NOOP_DATA_COLLECTOR
	}
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	if c.cfg.Ticks > 0 {
		c.cfg.HttpPort = 0
	}
	a, err := agent.New(c.cfg.Config)
	if err != nil {
		return err
	}
	if c.cfg.Ticks > 0 {
		a.RunTicks(c.cfg.Ticks)
		return a.Shutdown()
	}
	if err := a.Start(); err != nil {
		_ = a.Shutdown()
		return err
	}
	failed := make(chan error, 1)
	go func() {
		failed <- a.Wait()
	}()
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case err := <-failed:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
		}
	}
	return a.Shutdown()
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:     "commonevent",
		Short:   "Runs common event scripts against a game state",
		PreRunE: cli.setupConfig,
		RunE:    cli.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
