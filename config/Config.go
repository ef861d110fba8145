package config

import (
	"fmt"
	"time"

	"github.com/mohitkumar/commonevent/analytics"
	"github.com/mohitkumar/commonevent/state"
)

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_FILE StorageType = "file"

type EncoderDecoderType string

const JSON_ENCODER_DECODER EncoderDecoderType = "JSON"

type Config struct {
	// DatabasePath is the YAML or JSON common event database. When empty the
	// definitions are read from redis.
	DatabasePath         string
	StorageType          StorageType
	RedisConfig          RedisStorageConfig
	FileConfig           FileStorageConfig
	HttpPort             int
	TickRate             time.Duration
	MaxCommandsPerUpdate int
	ScriptTimeout        time.Duration
	MaxSwitchId          int
	MaxVariableId        int
	LoadSlot             string
	SaveSlot             string
	Ticks                int
	Watch                bool
	LogLevel             string
	EncoderDecoderType   EncoderDecoderType
	AnalyticsConfig      analytics.DataCollectorConfig
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
}

type FileStorageConfig struct {
	Dir      string
	Compress bool
}

func (c Config) Validate() error {
	switch c.StorageType {
	case STORAGE_TYPE_REDIS:
		if len(c.RedisConfig.Addrs) == 0 {
			return fmt.Errorf("redis storage needs at least one address")
		}
	case STORAGE_TYPE_FILE:
		if c.FileConfig.Dir == "" {
			return fmt.Errorf("file storage needs a directory")
		}
	default:
		return fmt.Errorf("unknown storage type %s", c.StorageType)
	}
	if c.DatabasePath == "" && c.StorageType != STORAGE_TYPE_REDIS {
		return fmt.Errorf("database path is required unless storage type is redis")
	}
	if c.EncoderDecoderType != JSON_ENCODER_DECODER {
		return fmt.Errorf("unsupported encoder decoder %s", c.EncoderDecoderType)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate should be positive")
	}
	if c.Ticks < 0 {
		return fmt.Errorf("ticks should not be negative")
	}
	if c.ScriptTimeout < 0 {
		return fmt.Errorf("script timeout should not be negative")
	}
	if c.MaxSwitchId < 0 || c.MaxSwitchId > state.MAX_SWITCH_ID {
		return fmt.Errorf("max switch id should be between 0 and %d", state.MAX_SWITCH_ID)
	}
	if c.MaxVariableId < 0 || c.MaxVariableId > state.MAX_VARIABLE_ID {
		return fmt.Errorf("max variable id should be between 0 and %d", state.MAX_VARIABLE_ID)
	}
	return nil
}
